package notification_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/notification"
	"github.com/oksasatya/go-hexagonal-users/pkg/mailer"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestEmailNotifier_SendsThroughMailgun(t *testing.T) {
	var (
		path string
		form url.Values
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			r.Body = io.NopCloser(strings.NewReader(string(body)))
			_ = r.ParseMultipartForm(1 << 20)
			form = r.MultipartForm.Value
		} else {
			form, _ = url.ParseQuery(string(body))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"<1@mg.example.com>","message":"Queued. Thank you."}`)
	}))
	defer srv.Close()

	mg := mailer.NewMailgun("mg.example.com", "key-test", "Users <no-reply@mg.example.com>")
	mg.APIBase = srv.URL + "/v3"
	n := notification.NewEmailNotifier(mg, quietLogger())

	err := n.Send(context.Background(), application.Notification{
		To:       "john@doe.com",
		Template: application.TemplateUserCreated,
		Data:     map[string]any{"Name": "John Doe", "Email": "john@doe.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/v3/mg.example.com/messages", path)
	assert.Equal(t, []string{"john@doe.com"}, form["to"])
	assert.Equal(t, []string{"Welcome, John Doe"}, form["subject"])
}

type failingSender struct{ calls int }

func (s *failingSender) Send(context.Context, string, string, string, string) error {
	s.calls++
	return assert.AnError
}

func TestEmailNotifier_Errors(t *testing.T) {
	s := &failingSender{}
	n := notification.NewEmailNotifier(s, quietLogger())

	err := n.Send(context.Background(), application.Notification{To: "john@doe.com", Template: "missing"})
	assert.Error(t, err)
	assert.Zero(t, s.calls)

	err = n.Send(context.Background(), application.Notification{To: "john@doe.com", Template: application.TemplateUserDeleted})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, s.calls)
}

func TestLogNotifier(t *testing.T) {
	n := notification.NewLogNotifier(quietLogger())
	assert.NoError(t, n.Send(context.Background(), application.Notification{To: "john@doe.com"}))
}
