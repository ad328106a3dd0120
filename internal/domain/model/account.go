package model

// GroupAccount is the identity the relay runs as, resolved fresh on every run.
type GroupAccount struct {
	ID       string
	Username string
}

// Member is an account followed by the group account.
type Member struct {
	ID   string
	Acct string
}
