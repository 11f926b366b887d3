package core_test

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/maktaba/core"
	appfs "github.com/trezcool/maktaba/fs"
	"github.com/trezcool/maktaba/tests"
)

func TestEmailMessage_Render(t *testing.T) {
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, true, testutil.NewLogger(core.NewTestConfig()))

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: "Amina", Address: "amina@test.cd"}},
		Subject:      "suspended",
		TemplateName: "owner_suspended",
		TemplateData: map[string]interface{}{"Name": "Amina", "OwnerID": "amina@test.cd", "Count": 100},
	}
	require.NoError(t, msg.Render("http://maktaba.test"))
	assert.True(t, msg.HasRecipients())
	assert.True(t, msg.HasContent())
	assert.Contains(t, msg.TextContent, "Hello Amina")
	assert.Contains(t, msg.TextContent, "100 one-star reviews")
	assert.Contains(t, msg.HTMLContent, "amina@test.cd")
	assert.Contains(t, msg.HTMLContent, "http://maktaba.test")

	plain := &core.EmailMessage{BodyStr: "hi"}
	require.NoError(t, plain.Render(""))
	assert.Equal(t, "hi", plain.TextContent)
	assert.False(t, plain.HasRecipients())

	missing := &core.EmailMessage{TemplateName: "nope"}
	assert.Error(t, missing.Render(""))
}
