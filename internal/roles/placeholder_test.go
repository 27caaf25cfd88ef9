package roles

import "testing"

func TestSubstitute(t *testing.T) {
	m := Mapping{"server_service": "picoquic_server", "client_service": "ivy_client"}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "server token",
			in:   "echo hi @{server_service:ip:decimal}",
			want: "echo hi @{picoquic_server:ip:decimal}",
		},
		{
			name: "both tokens",
			in:   "connect @{server_service:ip:decimal}:@{client_service:port:decimal}",
			want: "connect @{picoquic_server:ip:decimal}:@{ivy_client:port:decimal}",
		},
		{
			name: "unmapped token left verbatim",
			in:   "ping @{other_service:ip:hex}",
			want: "ping @{other_service:ip:hex}",
		},
		{
			name: "non-placeholder braces untouched",
			in:   "awk '{print $1}' @{not a placeholder}",
			want: "awk '{print $1}' @{not a placeholder}",
		},
		{
			name: "no placeholders",
			in:   "ls -la /app/logs",
			want: "ls -la /app/logs",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Substitute(tc.in, m); got != tc.want {
				t.Errorf("Substitute(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSubstitute_Idempotent(t *testing.T) {
	m := Mapping{"server_service": "picoquic_server", "client_service": "ivy_client"}
	in := "run @{server_service:ip:decimal} @{client_service:ip:hex} plain text"

	once := Substitute(in, m)
	twice := Substitute(once, m)
	if once != twice {
		t.Errorf("substitution not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestSubstituteAll_DoesNotMutateInput(t *testing.T) {
	m := Mapping{"server_service": "srv1"}
	in := map[string]string{"cmd": "x @{server_service:ip:decimal}", "plain": "y"}

	out := SubstituteAll(in, m)
	if in["cmd"] != "x @{server_service:ip:decimal}" {
		t.Error("input map was mutated")
	}
	if out["cmd"] != "x @{srv1:ip:decimal}" {
		t.Errorf("cmd = %q", out["cmd"])
	}
	if out["plain"] != "y" {
		t.Errorf("plain = %q", out["plain"])
	}
}
