package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/tootgroup/internal/application"
)

func TestTransformContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "paragraphs with trailing self mention",
			content: "<p>hello</p><p>world</p>@groupname",
			want:    "hello\n\nworld",
		},
		{
			name:    "self mention inside last paragraph",
			content: "<p>hello</p><p>world @groupname</p>",
			want:    "hello\n\nworld",
		},
		{
			name:    "line breaks",
			content: "<p>one<br />two<br>three</p>",
			want:    "one\ntwo\nthree",
		},
		{
			name: "mastodon mention markup",
			content: `<p><span class="h-card"><a href="https://example.social/@groupname" class="u-url mention">` +
				`@<span>groupname</span></a></span> meeting tonight</p>`,
			want: "meeting tonight",
		},
		{
			name:    "entities unescaped after stripping",
			content: "<p>a &lt;b&gt; tag &amp; &quot;quotes&quot;</p>",
			want:    `a <b> tag & "quotes"`,
		},
		{
			name:    "links keep their full text",
			content: `<p>see <a href="https://example.org" rel="nofollow"><span class="invisible">https://</span>example.org</a></p>`,
			want:    "see https://example.org",
		},
		{
			name:    "plain text passes through",
			content: "just text",
			want:    "just text",
		},
		{
			name:    "mention of another account is kept",
			content: "<p>@alice says hi @groupname</p>",
			want:    "@alice says hi",
		},
		{
			name:    "malformed markup is tolerated",
			content: "<p>unclosed <b>bold<p>next",
			want:    "unclosed bold\n\nnext",
		},
		{
			name:    "empty content",
			content: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, application.TransformContent(tt.content, "groupname"))
		})
	}
}

func TestTransformContent_Idempotent(t *testing.T) {
	inputs := []string{
		"<p>hello</p><p>world</p>@groupname",
		"<p>line<br />break</p><p>@groupname second &amp; third</p>",
		"<p>@@groupnamegroupname nested</p>",
	}

	for _, in := range inputs {
		once := application.TransformContent(in, "groupname")
		twice := application.TransformContent(once, "groupname")
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestTransformContent_NestedMentionRemovedCompletely(t *testing.T) {
	got := application.TransformContent("@@groupnamegroupname hi", "groupname")
	assert.Equal(t, "hi", got)
}

func TestStripMarkup(t *testing.T) {
	content := `<p>!<span class="h-card"><a href="https://example.social/@groupname" class="u-url mention">@<span>groupname</span></a></span> please boost &amp; share</p>`

	got := application.StripMarkup(content)

	assert.Equal(t, "!@groupname please boost &amp; share", got)
}

func TestStripMarkup_NoBreaks(t *testing.T) {
	assert.Equal(t, "helloworld", application.StripMarkup("<p>hello</p><p>world</p>"))
}
