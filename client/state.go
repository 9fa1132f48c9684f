package client

// State is the session state as seen by this client
type State int

const (
	// Anonymous means no access token is stored
	Anonymous State = iota
	// Authenticated means a token is stored and its expiry hint has not passed
	Authenticated
	// Expired means a token is stored but is past its expiry hint or cannot be decoded
	Expired
	// Refreshing means a refresh call is in flight
	Refreshing
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	case Refreshing:
		return "refreshing"
	}
	return "unknown"
}

// StateListener is told about every state transition. It runs on the goroutine
// that caused the transition and must not block.
type StateListener func(from, to State)

// State derives the current state from the store and any in-flight refresh
func (c *Client) State() State {
	if c.refreshing.Load() > 0 {
		return Refreshing
	}
	accessToken := c.store.AccessToken()
	if accessToken == "" {
		return Anonymous
	}
	if c.isExpired(accessToken) {
		return Expired
	}
	return Authenticated
}

func (c *Client) transition(to State) {
	c.stateMu.Lock()
	from := c.lastState
	c.lastState = to
	c.stateMu.Unlock()

	if from == to {
		return
	}
	c.log.Debug().Stringer("from", from).Stringer("to", to).Msg("Session state changed")
	for _, listener := range c.listeners {
		listener(from, to)
	}
}
