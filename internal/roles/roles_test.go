package roles

import "testing"

func TestOpposite_Involutive(t *testing.T) {
	for _, r := range []Role{Client, Server, Sender, Receiver, Role("attacker"), Role("")} {
		if got := Opposite(Opposite(r)); got != r {
			t.Errorf("Opposite(Opposite(%q)) = %q, want %q", r, got, r)
		}
	}
}

func TestOpposite_Pairs(t *testing.T) {
	cases := map[Role]Role{
		Client:   Server,
		Server:   Client,
		Sender:   Receiver,
		Receiver: Sender,
	}
	for in, want := range cases {
		if got := Opposite(in); got != want {
			t.Errorf("Opposite(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpposite_UnknownPassesThrough(t *testing.T) {
	if got := Opposite(Role("observer")); got != "observer" {
		t.Errorf("Opposite(observer) = %q, want observer", got)
	}
}

func TestBuildMapping_Client(t *testing.T) {
	m := BuildMapping(Client, "ivy_client", []string{"picoquic_server"})
	if m["server_service"] != "picoquic_server" {
		t.Errorf("server_service = %q, want picoquic_server", m["server_service"])
	}
	if m["client_service"] != "ivy_client" {
		t.Errorf("client_service = %q, want ivy_client", m["client_service"])
	}
	if _, ok := m["target_service"]; ok {
		t.Error("target_service should not be mapped for a known role")
	}
}

func TestBuildMapping_Server(t *testing.T) {
	m := BuildMapping(Server, "ivy_server", []string{"picoquic_client"})
	if m["client_service"] != "picoquic_client" {
		t.Errorf("client_service = %q, want picoquic_client", m["client_service"])
	}
	if m["server_service"] != "ivy_server" {
		t.Errorf("server_service = %q, want ivy_server", m["server_service"])
	}
}

func TestBuildMapping_UnknownRole(t *testing.T) {
	m := BuildMapping(Role("observer"), "ivy_svc", []string{"peer"})
	for _, key := range []string{"target_service", "server_service"} {
		if m[key] != "peer" {
			t.Errorf("%s = %q, want peer", key, m[key])
		}
	}
	if m["client_service"] != "ivy_svc" {
		t.Errorf("client_service = %q, want ivy_svc", m["client_service"])
	}
}

func TestBuildMapping_MultiTargetCollapsesToFirst(t *testing.T) {
	m := BuildMapping(Client, "ivy_client", []string{"first", "second", "third"})
	if m["server_service"] != "first" {
		t.Errorf("server_service = %q, want first", m["server_service"])
	}
}

func TestBuildMapping_NonEmptyTargetsNeverMapToLiteral(t *testing.T) {
	for _, r := range []Role{Client, Server, Role("weird")} {
		m := BuildMapping(r, "self", []string{"real_target"})
		for key, val := range m {
			if val == "target_service" {
				t.Errorf("role %q: %s mapped to literal target_service", r, key)
			}
		}
	}
}

func TestBuildMapping_EmptyTargetsDegradeToLiteral(t *testing.T) {
	m := BuildMapping(Client, "ivy_client", nil)
	if m["server_service"] != "target_service" {
		t.Errorf("server_service = %q, want target_service fallback", m["server_service"])
	}
}
