package forgesdk

import (
	"context"
	"strconv"
)

const clientsPath = "/api/v1/clients"

// ListClients returns every client in server order.
func (s *Session) ListClients(ctx context.Context) (*ClientList, error) {
	req, err := s.authRequest(ctx)
	if err != nil {
		return nil, err
	}
	return send[ClientList](req, methodGet, clientsPath)
}

// CreateClient creates a client. The backend answers 201.
func (s *Session) CreateClient(ctx context.Context, body ClientCreate) (*Client, error) {
	req, err := s.authRequest(ctx)
	if err != nil {
		return nil, err
	}
	return send[Client](req.SetBody(body), methodPost, clientsPath)
}

// UpdateClient patches the mutable fields of a client. The code is
// creation-only and ClientUpdate has no field for it.
func (s *Session) UpdateClient(ctx context.Context, id int64, body ClientUpdate) (*Client, error) {
	req, err := s.authRequest(ctx)
	if err != nil {
		return nil, err
	}
	return send[Client](req.SetBody(body), methodPatch, clientsPath+"/"+strconv.FormatInt(id, 10))
}

// DeleteClient deletes a client. The backend answers 204.
func (s *Session) DeleteClient(ctx context.Context, id int64) error {
	req, err := s.authRequest(ctx)
	if err != nil {
		return err
	}
	return sendNoContent(req, methodDelete, clientsPath+"/"+strconv.FormatInt(id, 10))
}
