package roles

// Role is the side of the protocol interaction a service plays.
type Role string

const (
	Client   Role = "client"
	Server   Role = "server"
	Sender   Role = "sender"
	Receiver Role = "receiver"
)

// opposites pairs each known role with its complement.
var opposites = map[Role]Role{
	Client:   Server,
	Server:   Client,
	Sender:   Receiver,
	Receiver: Sender,
}

// Opposite returns the complement of a role: testing a server requires the
// client implementation and vice versa. Unknown roles pass through unchanged.
func Opposite(r Role) Role {
	if opp, ok := opposites[r]; ok {
		return opp
	}
	return r
}

// Known reports whether r is one of the closed role set.
func Known(r Role) bool {
	_, ok := opposites[r]
	return ok
}

// Mapping maps role tokens (server_service, client_service, target_service)
// to concrete service identifiers.
type Mapping map[string]string

// fallbackTarget is substituted when no candidate targets are configured.
// Known soft-failure mode: the literal survives into rendered commands and is
// caught by the command validator rather than aborting mapping construction.
const fallbackTarget = "target_service"

// BuildMapping computes the role-token mapping for the current actor.
// The first candidate target is the primary target; multi-target topologies
// are not supported and silently collapse to the first entry.
func BuildMapping(current Role, self string, targets []string) Mapping {
	primary := fallbackTarget
	if len(targets) > 0 {
		primary = targets[0]
	}

	m := make(Mapping, 3)
	switch current {
	case Client, Sender:
		// We are the client: the implementation under test is the server.
		m["server_service"] = primary
		m["client_service"] = self
	case Server, Receiver:
		m["client_service"] = primary
		m["server_service"] = self
	default:
		// Unknown role: map all three tokens so substitution still resolves.
		m["target_service"] = primary
		m["server_service"] = primary
		m["client_service"] = self
	}
	return m
}
