package mailer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"

	"github.com/sells-group/nap-audit-cli/internal/model"
)

func TestSendReport(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(reportPath, []byte("Business Name\n"), 0o644))

	var sent *gomail.Message
	m := &Mailer{
		cfg:  Config{From: "audits@example.com"},
		send: func(msg *gomail.Message) error { sent = msg; return nil },
	}

	results := []model.AuditResult{
		{Status: model.StatusAllGood},
		{Status: model.StatusNeedsUpdate},
		{Status: model.StatusNeedsUpdate},
		{Status: model.StatusError},
	}
	require.NoError(t, m.SendReport([]string{"owner@example.com"}, reportPath, results))

	require.NotNil(t, sent)
	assert.Equal(t, []string{"owner@example.com"}, sent.GetHeader("To"))
	assert.Contains(t, sent.GetHeader("Subject")[0], "NAP Audit Report")
}

func TestSendReportNoRecipients(t *testing.T) {
	m := New(Config{Host: "localhost", Port: 25})

	err := m.SendReport(nil, "report.csv", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipients")
}

func TestSummaryBody(t *testing.T) {
	results := []model.AuditResult{
		{Status: model.StatusAllGood},
		{Status: model.StatusAllGood},
		{Status: model.StatusNeedsUpdate},
	}

	body := summaryBody(results)
	assert.Contains(t, body, "3 businesses checked")
	assert.Contains(t, body, "All Good:")
	assert.Contains(t, body, "Needs Update:")
	assert.Contains(t, body, "report is attached")
}
