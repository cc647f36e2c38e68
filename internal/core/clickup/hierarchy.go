package clickup

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/ariadng/clickup-mcp/internal/core"
	"github.com/ariadng/clickup-mcp/internal/core/engine"
)

// ListsQuery selects lists by space or folder. SpaceID wins when both are set.
type ListsQuery struct {
	SpaceID  string
	FolderID string
	Archived bool
}

// GetWorkspaces returns the workspaces (teams) the key can access.
func (c *Client) GetWorkspaces(ctx context.Context) ([]core.Workspace, error) {
	var resp core.WorkspacesResponse
	if err := c.do(ctx, request{op: opGetWorkspaces}, &resp); err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

// GetSpaces returns the spaces in a workspace.
func (c *Client) GetSpaces(ctx context.Context, teamID string, archived bool) ([]core.Space, error) {
	var resp core.SpacesResponse
	err := c.do(ctx, request{
		op:     opGetSpaces,
		params: map[string]string{"team_id": teamID},
		query:  archivedQuery(archived),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Spaces, nil
}

// GetLists returns the lists in a space or folder.
func (c *Client) GetLists(ctx context.Context, query ListsQuery) ([]core.List, error) {
	req := request{query: archivedQuery(query.Archived)}
	switch {
	case strings.TrimSpace(query.SpaceID) != "":
		req.op = opGetSpaceLists
		req.params = map[string]string{"space_id": query.SpaceID}
	case strings.TrimSpace(query.FolderID) != "":
		req.op = opGetFolderLists
		req.params = map[string]string{"folder_id": query.FolderID}
	default:
		return nil, engine.Validation(opGetSpaceLists.label, "either space_id or folder_id must be provided")
	}

	var resp core.ListsResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.Lists, nil
}

// GetAuthorizedUser returns the account that owns the API key.
func (c *Client) GetAuthorizedUser(ctx context.Context) (*core.AuthorizedUser, error) {
	return c.authorizedUser(ctx, false)
}

// TestConnection verifies the key by fetching the authorized user. It always
// reaches the network.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.authorizedUser(ctx, true)
	return err
}

func (c *Client) authorizedUser(ctx context.Context, fresh bool) (*core.AuthorizedUser, error) {
	var resp struct {
		User core.AuthorizedUser `json:"user"`
	}
	if err := c.do(ctx, request{op: opGetAuthorizedUser, fresh: fresh}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func archivedQuery(archived bool) url.Values {
	return url.Values{"archived": {strconv.FormatBool(archived)}}
}
