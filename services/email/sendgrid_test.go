package emailsvc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"sync"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coursework/core"
)

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Debug(string, ...interface{}) {}
func (l *recordingLogger) Info(string, ...interface{})  {}
func (l *recordingLogger) Warn(string, ...interface{})  {}
func (l *recordingLogger) Fatal(string, ...interface{}) {}
func (l *recordingLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

type sgBody struct {
	From struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"from"`
	Personalizations []struct {
		Subject string `json:"subject"`
		To      []struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"to"`
	} `json:"personalizations"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func Test_sendgridService_send(t *testing.T) {
	origAPI := sendgridAPIFunc
	t.Cleanup(func() { sendgridAPIFunc = origAPI })

	conf := core.NewConfig()
	conf.AppName = "Coursework"
	conf.SendgridApiKey = "sg-key"
	from := conf.DefaultFromEmail()

	tests := []struct {
		name       string
		status     int
		apiErr     error
		wantLogged bool
	}{
		{name: "accepted", status: http.StatusAccepted},
		{name: "rejected", status: http.StatusBadRequest, wantLogged: true},
		{name: "transport error", apiErr: fmt.Errorf("connection refused"), wantLogged: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got rest.Request
			sendgridAPIFunc = func(req rest.Request) (*rest.Response, error) {
				got = req
				if tt.apiErr != nil {
					return nil, tt.apiErr
				}
				return &rest.Response{StatusCode: tt.status, Body: "{}"}, nil
			}

			logger := new(recordingLogger)
			svc := NewSendgridService(conf, logger)
			msg := &core.EmailMessage{
				To:          []mail.Address{{Name: "Hero", Address: "hero@test.cd"}},
				Subject:     "You completed Intro to Go",
				TextContent: "well done",
				HTMLContent: "<p>well done</p>",
			}
			svc.send(*msg)

			assert.Equal(t, http.MethodPost, string(got.Method))
			assert.Equal(t, host+endpoint, got.BaseURL)
			assert.Equal(t, "Bearer sg-key", got.Headers["Authorization"])

			var body sgBody
			require.NoError(t, json.Unmarshal(got.Body, &body))
			assert.Equal(t, from.Name, body.From.Name)
			assert.Equal(t, from.Address, body.From.Email)
			require.Len(t, body.Personalizations, 1)
			assert.Equal(t, "[Coursework] You completed Intro to Go", body.Personalizations[0].Subject)
			require.Len(t, body.Personalizations[0].To, 1)
			assert.Equal(t, "hero@test.cd", body.Personalizations[0].To[0].Email)
			require.Len(t, body.Content, 2)
			assert.Equal(t, "text/plain", body.Content[0].Type)
			assert.Equal(t, "text/html", body.Content[1].Type)

			assert.Equal(t, tt.wantLogged, len(logger.errors) > 0, logger.errors)
		})
	}
}
