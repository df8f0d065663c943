// Package roomauth mints LiveKit room-join tokens for the agent's own
// local participant, bound to LiveKit's own token signer.
package roomauth

import (
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"
)

// agentMetadata is attached to the agent's local participant so other
// participants and tooling can identify it.
const agentMetadata = `{"role":"agent","subtype":"captions"}`

// Issuer mints a room-join token for a given room/identity pair.
type Issuer interface {
	Token(roomName, identity, name string) (string, error)
}

// LocalIssuer signs tokens directly with the project's API key/secret.
type LocalIssuer struct {
	apiKey    string
	apiSecret string
	validFor  time.Duration
}

// NewLocalIssuer creates a LocalIssuer.
func NewLocalIssuer(apiKey, apiSecret string) *LocalIssuer {
	return &LocalIssuer{apiKey: apiKey, apiSecret: apiSecret, validFor: 24 * time.Hour}
}

// Token grants the agent full room-join, publish, subscribe, and
// publish-data permissions and marks it as an agent participant.
func (li *LocalIssuer) Token(roomName, identity, name string) (string, error) {
	if li.apiKey == "" || li.apiSecret == "" {
		return "", fmt.Errorf("roomauth: missing LiveKit API key/secret")
	}

	at := auth.NewAccessToken(li.apiKey, li.apiSecret)
	grant := &auth.VideoGrant{
		Room:     roomName,
		RoomJoin: true,
		Agent:    true,
	}
	grant.SetCanPublish(true)
	grant.SetCanPublishData(true)
	grant.SetCanSubscribe(true)
	at.AddGrant(grant).
		SetIdentity(identity).
		SetName(name).
		SetMetadata(agentMetadata).
		SetValidFor(li.validFor)

	return at.ToJWT()
}
