package session

import (
	"testing"

	clierrors "devdevman/cli/internal/errors"
)

func TestSignInResultSession(t *testing.T) {
	tests := []struct {
		name    string
		in      SignInResult
		want    *UserSession
		wantErr bool
	}{
		{
			name: "complete",
			in:   SignInResult{Account: Account{Username: "alice", DisplayName: "Alice A"}, AccessToken: "tok1", IdentityToken: "id1"},
			want: &UserSession{Username: "alice", DisplayName: "Alice A", AccessToken: "tok1", IdentityToken: "id1"},
		},
		{
			name: "display name falls back to username",
			in:   SignInResult{Account: Account{Username: " alice "}, AccessToken: "tok1", IdentityToken: "id1"},
			want: &UserSession{Username: "alice", DisplayName: "alice", AccessToken: "tok1", IdentityToken: "id1"},
		},
		{
			name:    "missing username",
			in:      SignInResult{Account: Account{DisplayName: "Alice A"}, AccessToken: "tok1", IdentityToken: "id1"},
			wantErr: true,
		},
		{
			name:    "missing tokens",
			in:      SignInResult{Account: Account{Username: "alice"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Session()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Session() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !clierrors.Is(err, clierrors.InteractiveFlowFailed) {
					t.Errorf("Session() error kind = %q", clierrors.KindOf(err))
				}
				if got != nil {
					t.Errorf("Session() = %+v alongside error", got)
				}
				return
			}
			if *got != *tt.want {
				t.Errorf("Session() = %+v, want %+v", got, tt.want)
			}
			if !got.Complete() {
				t.Errorf("Complete() = false for %+v", got)
			}
		})
	}
}

func TestCompleteOnNil(t *testing.T) {
	var u *UserSession
	if u.Complete() {
		t.Errorf("nil session reported complete")
	}
}
