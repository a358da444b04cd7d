package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/affiliates"
	"github.com/handshakeadmin/DYOROfficial-sub002/internal/users"
)

type fakeStore struct {
	admins map[string]bool
	codes  []affiliates.NewCode
	opened int
	closed int
}

func (f *fakeStore) SetAdmin(_ context.Context, id string, admin bool) error {
	if _, ok := f.admins[id]; !ok {
		return users.ErrNotFound
	}
	f.admins[id] = admin
	return nil
}

func (f *fakeStore) CreateCode(_ context.Context, n affiliates.NewCode) (affiliates.Code, error) {
	f.codes = append(f.codes, n)
	return affiliates.Code{ID: "c-1", Code: n.Code, AffiliateEmail: n.Email, AffiliateName: n.Name, IsAffiliate: true}, nil
}

func execute(t *testing.T, f *fakeStore, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func(context.Context) (operatorStore, func(), error) {
		f.opened++
		return f, func() { f.closed++ }, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGrantAndRevokeAdmin(t *testing.T) {
	f := &fakeStore{admins: map[string]bool{"u1": false}}

	out, err := execute(t, f, "grant-admin", "u1")
	require.NoError(t, err)
	assert.True(t, f.admins["u1"])
	assert.Contains(t, out, "u1 admin=true")

	_, err = execute(t, f, "revoke-admin", "u1")
	require.NoError(t, err)
	assert.False(t, f.admins["u1"])
	assert.Equal(t, f.opened, f.closed)

	_, err = execute(t, f, "grant-admin", "ghost")
	assert.ErrorContains(t, err, "no profile with id ghost")

	_, err = execute(t, f, "grant-admin")
	assert.Error(t, err)
}

func TestAffiliateAdd(t *testing.T) {
	f := &fakeStore{}

	out, err := execute(t, f, "affiliate", "add", "--code", "SPRING10", "--email", "ann@shop.test", "--name", "Ann")
	require.NoError(t, err)
	require.Len(t, f.codes, 1)
	assert.Contains(t, out, "created SPRING10 (c-1) for ann@shop.test")

	_, err = execute(t, f, "affiliate", "add", "--code", "bad code!", "--email", "ann@shop.test", "--name", "Ann")
	assert.Error(t, err)
	_, err = execute(t, f, "affiliate", "add", "--code", "X1", "--name", "Ann")
	assert.Error(t, err)
	assert.Len(t, f.codes, 1)
}
