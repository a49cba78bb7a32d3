package directory

// HostClient resolves host identities against the user service.
type HostClient struct {
	client
}

func NewHostClient(cfg Config) *HostClient {
	return &HostClient{client: newClient(cfg)}
}

// GetHost fetches one user. Returns (nil, nil) when the user service
// does not know the id, and an error when the lookup itself failed —
// callers treat those very differently (fail fast vs degrade).
func (h *HostClient) GetHost(hostID string) (*Host, error) {
	var host Host
	err := h.getJSON("/users/"+escape(hostID), &host)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &host, nil
}
