package safety

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckContent(t *testing.T) {
	m := NewModerator([]string{"badword", " "})

	assert.NoError(t, m.CheckContent("the prof cancelled class again"))

	cases := map[string]string{
		"text me on +237 6 99 88 77 66":   RulePhone,
		"dm gossip.queen@example.com":     RuleEmail,
		"that is a BADWORD if I ever saw": RuleBlockedWord,
	}
	for text, wantRule := range cases {
		err := m.CheckContent(text)
		assert.ErrorIs(t, err, ErrContentRejected, text)

		var rejected *RejectedError
		if assert.True(t, errors.As(err, &rejected), text) {
			assert.Equal(t, wantRule, rejected.Rule)
		}
	}
}

func TestBlockedWordsMatchWholeWords(t *testing.T) {
	m := NewModerator([]string{"ass"})
	assert.NoError(t, m.CheckContent("first class pass"))
	assert.Error(t, m.CheckContent("what an ass"))
}
