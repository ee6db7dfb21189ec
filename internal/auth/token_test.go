package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcclean/trash-service/internal/model"
)

func TestIssueAndParse(t *testing.T) {
	user := uuid.New()
	token, err := NewIssuer("s3cret", time.Hour).Issue(user)
	require.NoError(t, err)

	principal, err := NewParser("s3cret").Parse("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, user, principal.UserID)
}

func TestParseRejects(t *testing.T) {
	user := uuid.New()
	token, err := NewIssuer("s3cret", time.Hour).Issue(user)
	require.NoError(t, err)

	_, err = NewParser("other").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewParser("s3cret").Parse("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer("s3cret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(user)
	require.NoError(t, err)
	_, err = NewParser("s3cret").Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	nilSubject, err := NewIssuer("s3cret", time.Hour).Issue(uuid.Nil)
	require.NoError(t, err)
	_, err = NewParser("s3cret").Parse(nilSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSession(t *testing.T) {
	user := uuid.New()
	id, ok := NewSession(model.Principal{UserID: user}).CurrentUser(context.Background())
	assert.True(t, ok)
	assert.Equal(t, user, id)

	_, ok = NewSession(model.Principal{}).CurrentUser(context.Background())
	assert.False(t, ok)
}
