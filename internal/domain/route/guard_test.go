package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
)

func identity(t *testing.T, role auth.Role) auth.Identity {
	t.Helper()
	if role == "" {
		return auth.Anonymous()
	}
	id, err := auth.NewIdentity("id-"+string(role), string(role)+"@example.com", role, "token")
	require.NoError(t, err)
	return id
}

func TestDecide_Table(t *testing.T) {
	tests := []struct {
		role  auth.Role
		class Class
		want  Decision
	}{
		{"", ClassPublicOnly, Decision{Action: ActionRender}},
		{"", ClassUserProtected, Decision{Action: ActionRedirect, Target: PathLogin}},
		{"", ClassAdminProtected, Decision{Action: ActionRedirect, Target: PathLogin}},
		{auth.RoleUser, ClassPublicOnly, Decision{Action: ActionRedirect, Target: PathHome}},
		{auth.RoleUser, ClassUserProtected, Decision{Action: ActionRender}},
		{auth.RoleUser, ClassAdminProtected, Decision{Action: ActionRedirect, Target: PathHome}},
		{auth.RoleAdmin, ClassPublicOnly, Decision{Action: ActionRedirect, Target: PathHome}},
		{auth.RoleAdmin, ClassUserProtected, Decision{Action: ActionRender}},
		{auth.RoleAdmin, ClassAdminProtected, Decision{Action: ActionRender}},
	}

	for _, tt := range tests {
		name := "anonymous"
		if tt.role != "" {
			name = string(tt.role)
		}
		t.Run(name+"/"+tt.class.String(), func(t *testing.T) {
			state := auth.SessionState{Identity: identity(t, tt.role)}
			assert.Equal(t, tt.want, Decide(state, tt.class))
		})
	}
}

func TestDecide_ResolvingAlwaysLoads(t *testing.T) {
	for _, role := range []auth.Role{"", auth.RoleUser, auth.RoleAdmin} {
		for _, class := range []Class{ClassPublicOnly, ClassUserProtected, ClassAdminProtected, ClassUnknown} {
			state := auth.SessionState{Identity: identity(t, role), Resolving: true}
			assert.Equal(t, ActionShowLoading, Decide(state, class).Action, "role=%q class=%s", role, class)
		}
	}
}

func TestFallback(t *testing.T) {
	assert.Equal(t, Decision{Action: ActionRedirect, Target: PathLogin},
		Fallback(auth.SessionState{Identity: auth.Anonymous()}))
	assert.Equal(t, Decision{Action: ActionRedirect, Target: PathHome},
		Fallback(auth.SessionState{Identity: identity(t, auth.RoleUser)}))
	assert.Equal(t, Decision{Action: ActionRedirect, Target: PathHome},
		Fallback(auth.SessionState{Identity: identity(t, auth.RoleAdmin)}))
	assert.Equal(t, ActionShowLoading, Fallback(auth.SessionState{Resolving: true}).Action)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path   string
		want   Class
		wantOK bool
	}{
		{"/", ClassUserProtected, true},
		{"/login", ClassPublicOnly, true},
		{"/register", ClassPublicOnly, true},
		{"/admin", ClassAdminProtected, true},
		{"/property/P123", ClassUserProtected, true},
		{"/property/", ClassUnknown, false},
		{"/property/P1/extra", ClassUnknown, false},
		{"/nowhere", ClassUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Classify(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestEvaluate_UnmatchedUsesFallback(t *testing.T) {
	state := auth.SessionState{Identity: identity(t, auth.RoleUser)}
	assert.Equal(t, Decision{Action: ActionRedirect, Target: PathHome}, Evaluate(state, "/does-not-exist"))
	assert.Equal(t, Decision{Action: ActionRender}, Evaluate(state, "/property/P123"))
}

func TestListingIntent_IsGuarded(t *testing.T) {
	intent := ListingIntent()
	require.NotNil(t, intent)

	// A logout that races the dismissal sends the user to login, not the listing.
	got := Evaluate(auth.SessionState{Identity: auth.Anonymous()}, intent.Target)
	assert.Equal(t, Decision{Action: ActionRedirect, Target: PathLogin}, got)
}
