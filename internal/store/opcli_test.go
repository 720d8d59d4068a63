package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/envmigrate/internal/store"
	"github.com/systmms/envmigrate/internal/testutil"
)

func newGateway(mockExec *testutil.MockCommandExecutor) *store.CLIGateway {
	return store.NewCLIGateway(store.CLIConfig{}, mockExec)
}

func TestCLIGateway_ItemExists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		stdout     string
		stderr     string
		exitCode   int
		wantExists bool
		wantErr    func(t *testing.T, err error)
	}{
		{
			name:       "item present",
			stdout:     `{"id":"abc","title":"acme__widget__root"}`,
			wantExists: true,
		},
		{
			name:     "item absent",
			stderr:   `"acme__widget__root" isn't an item in the "gh-projects" vault`,
			exitCode: 1,
		},
		{
			name:     "vault missing",
			stderr:   `"gh-projects" isn't a vault in this account`,
			exitCode: 1,
			wantErr: func(t *testing.T, err error) {
				var vaultErr *store.VaultNotFoundError
				require.ErrorAs(t, err, &vaultErr)
				assert.Equal(t, "gh-projects", vaultErr.Vault)
			},
		},
		{
			name:     "not signed in",
			stderr:   "you are not currently signed in",
			exitCode: 1,
			wantErr: func(t *testing.T, err error) {
				var authErr *store.AuthError
				require.ErrorAs(t, err, &authErr)
			},
		},
		{
			name:     "transport failure",
			stderr:   "connecting to 1Password: network is unreachable",
			exitCode: 1,
			wantErr: func(t *testing.T, err error) {
				var unavailErr *store.UnavailableError
				require.ErrorAs(t, err, &unavailErr)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockExec := testutil.NewMockCommandExecutor()
			pattern := "op item get acme__widget__root --vault gh-projects --format json"
			if tt.exitCode != 0 {
				mockExec.AddErrorResponse(pattern, tt.stderr, tt.exitCode)
			} else {
				mockExec.AddResponse(pattern, tt.stdout)
			}

			exists, err := newGateway(mockExec).ItemExists(context.Background(), "gh-projects", "acme__widget__root")
			if tt.wantErr != nil {
				tt.wantErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExists, exists)
		})
	}
}

func TestCLIGateway_UpsertFields_CreatesWhenAbsent(t *testing.T) {
	t.Parallel()

	mockExec := testutil.NewMockCommandExecutor()
	mockExec.AddErrorResponse("op item get", `"acme__widget__root" isn't an item in the "gh-projects" vault`, 1)
	mockExec.AddResponse("op item create", `{"id":"new"}`)

	fields := map[string]string{
		"db_password": "secret123",
		"api_key":     "k-456",
	}
	err := newGateway(mockExec).UpsertFields(context.Background(), "gh-projects", "acme__widget__root", fields)
	require.NoError(t, err)

	calls := mockExec.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "item create")
	assert.Contains(t, calls[1], "--title acme__widget__root")
	assert.Contains(t, calls[1], "--vault gh-projects")
	// Sorted field order keeps repeated runs byte-identical.
	assert.Contains(t, calls[1], "api_key[password]=k-456 db_password[password]=secret123")
}

func TestCLIGateway_UpsertFields_EditsWhenPresent(t *testing.T) {
	t.Parallel()

	mockExec := testutil.NewMockCommandExecutor()
	mockExec.AddResponse("op item get", `{"id":"abc"}`)
	mockExec.AddResponse("op item edit", `{"id":"abc"}`)

	err := newGateway(mockExec).UpsertFields(context.Background(), "gh-projects", "acme__widget__root",
		map[string]string{"db_password": "rotated"})
	require.NoError(t, err)

	calls := mockExec.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "item edit acme__widget__root --vault gh-projects")
	assert.Contains(t, calls[1], "db_password[password]=rotated")
}

func TestCLIGateway_InjectTemplate(t *testing.T) {
	t.Parallel()

	t.Run("resolves references via stdin", func(t *testing.T) {
		t.Parallel()

		template := "DB_PASSWORD=\"op://gh-projects/acme__widget__root/db_password\"\nDEBUG_MODE=false\n"
		resolved := "DB_PASSWORD=\"secret123\"\nDEBUG_MODE=false\n"

		mockExec := testutil.NewMockCommandExecutor()
		mockExec.AddResponse("op inject", resolved)

		out, err := newGateway(mockExec).InjectTemplate(context.Background(), template)
		require.NoError(t, err)
		assert.Equal(t, resolved, out)

		require.Len(t, mockExec.RecordedCalls, 1)
		assert.Equal(t, []byte(template), mockExec.RecordedCalls[0].Input)
	})

	t.Run("missing field is a reference error", func(t *testing.T) {
		t.Parallel()

		mockExec := testutil.NewMockCommandExecutor()
		mockExec.AddErrorResponse("op inject", `could not resolve item reference "op://gh-projects/acme__widget__root/db_password"`, 1)

		_, err := newGateway(mockExec).InjectTemplate(context.Background(), "DB_PASSWORD=\"op://gh-projects/acme__widget__root/db_password\"\n")
		var refErr *store.ReferenceError
		require.ErrorAs(t, err, &refErr)
	})
}

func TestCLIGateway_Scheme(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "op", store.NewCLIGateway(store.CLIConfig{}, testutil.NewMockCommandExecutor()).Scheme())
	assert.Equal(t, "vault", store.NewCLIGateway(store.CLIConfig{Scheme: "vault"}, testutil.NewMockCommandExecutor()).Scheme())
}

func TestCLIGateway_AccountFlag(t *testing.T) {
	t.Parallel()

	mockExec := testutil.NewMockCommandExecutor()
	mockExec.AddResponse("op account get --account work", "ok")

	g := store.NewCLIGateway(store.CLIConfig{Account: "work"}, mockExec)
	require.NoError(t, g.Validate(context.Background()))

	calls := mockExec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "op account get --account work", calls[0])
}

func TestReference(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "op://gh-projects/acme__widget__root/db_password",
		store.Reference("op", "gh-projects", "acme__widget__root", "db_password"))
}
