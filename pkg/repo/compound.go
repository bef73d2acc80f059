package repo

import (
	"context"

	"github.com/scienceol/chemdash/pkg/repo/model"
)

// CompoundRepo is the remote compound service. Every call carries the caller's
// bearer credential; none retry.
type CompoundRepo interface {
	ListCompounds(ctx context.Context, credential string) ([]*model.Compound, error)
	CreateCompound(ctx context.Context, req *model.CompoundReq, credential string) (*model.Compound, error)
	DeleteCompound(ctx context.Context, id int64, credential string) error
	ListUsers(ctx context.Context, credential string) ([]*model.User, error)
	ShareCompound(ctx context.Context, compoundID, userID int64, credential string) (*model.ShareAck, error)
}
