package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/peers/internal/pkg/apperrors"
)

func ptr(v int64) *int64 { return &v }

func TestNewHost(t *testing.T) {
	tests := []struct {
		name    string
		userID  *int64
		orgID   *int64
		want    Host
		wantErr bool
	}{
		{name: "user", userID: ptr(3), want: Host{Kind: HostKindUser, ID: 3}},
		{name: "organization", orgID: ptr(9), want: Host{Kind: HostKindOrganization, ID: 9}},
		{name: "both", userID: ptr(3), orgID: ptr(9), wantErr: true},
		{name: "neither", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, err := NewHost(tt.userID, tt.orgID)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
				assert.Equal(t, Host{}, host)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, host)

			userID, orgID := host.Columns()
			assert.Equal(t, tt.userID, userID)
			assert.Equal(t, tt.orgID, orgID)

			again, err := NewHost(userID, orgID)
			require.NoError(t, err)
			assert.Equal(t, host, again)
		})
	}
}

func TestHostHelpers(t *testing.T) {
	user := UserHost(3)
	assert.True(t, user.IsUser(3))
	assert.False(t, user.IsUser(4))
	assert.False(t, OrganizationHost(3).IsUser(3))
	assert.Equal(t, "organization:9", OrganizationHost(9).String())

	userID, orgID := Host{}.Columns()
	assert.Nil(t, userID)
	assert.Nil(t, orgID)
}
