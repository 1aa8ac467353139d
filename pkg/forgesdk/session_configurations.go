package forgesdk

import (
	"context"
	"strconv"
)

const configurationsPath = "/api/v1/configurations"

// ListConfigurations returns every active configuration in server order.
func (s *Session) ListConfigurations(ctx context.Context) (*ConfigurationList, error) {
	req, err := s.authRequest(ctx)
	if err != nil {
		return nil, err
	}
	return send[ConfigurationList](req, methodGet, configurationsPath)
}

// CreateConfiguration creates a configuration entry.
func (s *Session) CreateConfiguration(ctx context.Context, body ConfigurationCreate) (*Configuration, error) {
	req, err := s.authRequest(ctx)
	if err != nil {
		return nil, err
	}
	return send[Configuration](req.SetBody(body), methodPost, configurationsPath)
}

// UpdateConfiguration patches value, value_type and description. The key
// never changes after creation.
func (s *Session) UpdateConfiguration(ctx context.Context, id int64, body ConfigurationUpdate) (*Configuration, error) {
	req, err := s.authRequest(ctx)
	if err != nil {
		return nil, err
	}
	return send[Configuration](req.SetBody(body), methodPatch, configurationsPath+"/"+strconv.FormatInt(id, 10))
}

// DeleteConfiguration deletes a configuration entry.
func (s *Session) DeleteConfiguration(ctx context.Context, id int64) error {
	req, err := s.authRequest(ctx)
	if err != nil {
		return err
	}
	return sendNoContent(req, methodDelete, configurationsPath+"/"+strconv.FormatInt(id, 10))
}
