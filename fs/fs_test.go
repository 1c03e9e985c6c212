package appfs_test

import (
	"io/fs"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursework/core"
	appfs "github.com/trezcool/coursework/fs"
)

func TestFS_EmailTemplates(t *testing.T) {
	for _, name := range []string{"_base.txt", "_base.gohtml", "course_completed.txt", "course_completed.gohtml"} {
		_, err := fs.Stat(appfs.FS, appfs.EmailTemplatesDir+"/"+name)
		assert.NoError(t, err, name)
	}

	conf := &core.Config{AppName: "Coursework", TestMode: true, FrontendBaseURL: "http://localhost:3000"}
	require.NoError(t, core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf))

	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: "hero@test.cd"}},
		Subject:      "You completed Intro to Go",
		TemplateName: "course_completed",
		TemplateData: map[string]interface{}{"StudentName": "Hero", "CourseTitle": "Intro to Go", "CourseID": "c1"},
	}
	require.NoError(t, msg.Render())
	assert.Contains(t, msg.TextContent, "Intro to Go")
	assert.Contains(t, msg.HTMLContent, "Intro to Go")
	assert.Contains(t, msg.HTMLContent, "http://localhost:3000")
}

func TestFS_Migrations(t *testing.T) {
	files, err := fs.Glob(appfs.FS, appfs.MigrationsDir+"/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/00001_course_structure.sql",
		"migrations/00002_enrollments.sql",
		"migrations/00003_progress_facts.sql",
	}, files)
}
