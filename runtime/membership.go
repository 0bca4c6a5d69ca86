package runtime

import (
	"context"
	"fmt"
	"strings"

	"taskhub/contract"
	"taskhub/domain"
	"taskhub/errors"

	"github.com/samber/lo"
)

// MembershipResolver builds the initial scope set of a connection from the
// durable membership table.
//
// The result is a snapshot. A user added to a project after connecting does not
// receive that project's events until the client sends project:join; open
// connections are never refreshed behind their back.
type MembershipResolver struct {
	store contract.IMembershipStore
}

func NewMembershipResolver(store contract.IMembershipStore) *MembershipResolver {
	return &MembershipResolver{store: store}
}

// ScopesFor returns user:<id> followed by one project:<id> per membership.
func (m *MembershipResolver) ScopesFor(ctx context.Context, identity domain.UserIdentity) ([]domain.Scope, error) {
	projects, err := m.store.ProjectsOf(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMembershipFetch, err)
	}
	projects = lo.Uniq(lo.Filter(projects, func(id string, _ int) bool {
		return strings.TrimSpace(id) != ""
	}))
	scopes := make([]domain.Scope, 0, len(projects)+1)
	scopes = append(scopes, domain.UserScope(identity.ID))
	for _, projectID := range projects {
		scopes = append(scopes, domain.ProjectScope(projectID))
	}
	return scopes, nil
}

// CanJoinProject checks the live membership table, used when a client explicitly
// re-subscribes to a project after the snapshot was taken.
func (m *MembershipResolver) CanJoinProject(ctx context.Context, identity domain.UserIdentity, projectID string) (bool, error) {
	ok, err := m.store.IsMember(ctx, identity.ID, projectID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", errors.ErrMembershipFetch, err)
	}
	return ok, nil
}
