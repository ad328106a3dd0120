package application

import "github.com/ericfisherdev/tootgroup/internal/domain/model"

// MemberSet is the set of account IDs followed by the group account. It is
// rebuilt from the full follow list on every run.
type MemberSet map[string]struct{}

// NewMemberSet builds a MemberSet from the group's follow list.
func NewMemberSet(members []model.Member) MemberSet {
	set := make(MemberSet, len(members))
	for _, m := range members {
		if m.ID == "" {
			continue
		}
		set[m.ID] = struct{}{}
	}
	return set
}

// Contains reports whether accountID belongs to a group member.
func (s MemberSet) Contains(accountID string) bool {
	_, ok := s[accountID]
	return ok
}
