package services

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"admissions_app_go/services/i18n"

	"github.com/stretchr/testify/assert"
)

func TestLeadErrorMapping(t *testing.T) {
	for kind, info := range kindInfo {
		err := newLeadError(kind, "")
		assert.Equal(t, info.messageKey, err.MessageKey())
		assert.Equal(t, info.status, err.HTTPStatus())
		assert.NotEqual(t, info.messageKey, i18n.Translate("en", info.messageKey), "untranslated key %s", info.messageKey)
		assert.NotEqual(t, info.messageKey, i18n.Translate("hi", info.messageKey), "untranslated key %s", info.messageKey)
	}

	unknown := &LeadError{Kind: "SOMETHING_ELSE"}
	assert.Equal(t, GenericErrorKey, unknown.MessageKey())
	assert.Equal(t, http.StatusInternalServerError, unknown.HTTPStatus())
}

func TestLeadErrorChain(t *testing.T) {
	err := fmt.Errorf("submit: %w", wrapLeadError(KindSubmissionFailed, "", errBoom))

	assert.True(t, IsKind(err, KindSubmissionFailed))
	assert.False(t, IsKind(err, KindOtpInvalid))
	assert.ErrorIs(t, err, errBoom)

	le, ok := AsLeadError(err)
	assert.True(t, ok)
	assert.Contains(t, le.Error(), "boom")

	_, ok = AsLeadError(errBoom)
	assert.False(t, ok)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, (&LeadError{}).RetryAfterSeconds())
	assert.Equal(t, 1, (&LeadError{RetryAfter: 200 * time.Millisecond}).RetryAfterSeconds())
	assert.Equal(t, 45, (&LeadError{RetryAfter: 45 * time.Second}).RetryAfterSeconds())
}

func TestMissingFieldsError(t *testing.T) {
	err := requireFields(field{"name", ""}, field{"email", "a@b.co"}, field{"message", " "})
	le, ok := AsLeadError(err)
	assert.True(t, ok)
	assert.Equal(t, "name", le.Field)
	assert.Equal(t, []string{"name", "message"}, le.Fields)
	assert.Equal(t, "MISSING_REQUIRED_FIELDS (name): name, message", le.Error())

	assert.NoError(t, requireFields(field{"name", "x"}))
}
