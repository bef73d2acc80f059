package dashboard

import (
	"github.com/gofrs/uuid/v5"
	"github.com/scienceol/chemdash/pkg/core/dialog"
	"github.com/scienceol/chemdash/pkg/core/notify"
	"github.com/scienceol/chemdash/pkg/core/render"
	"github.com/scienceol/chemdash/pkg/repo/model"
)

// Entry is a persisted compound with its depiction.
type Entry struct {
	model.Compound
	Markup render.Markup `json:"markup"`
}

// Preview is a search result that has not been saved. Its key is a
// client-side UUID and never doubles as a compound service id.
type Preview struct {
	Key       uuid.UUID     `json:"key"`
	Name      string        `json:"name"`
	Structure string        `json:"smiles_string"`
	Markup    render.Markup `json:"markup"`
}

type Snapshot struct {
	SessionID    string               `json:"session_id"`
	Compounds    []Entry              `json:"compounds"`
	Users        []model.User         `json:"users"`
	Query        string               `json:"query"`
	SearchResult *Preview             `json:"search_result,omitempty"`
	Dialog       dialog.State         `json:"dialog"`
	Notification *notify.Notification `json:"notification,omitempty"`
	Mounted      bool                 `json:"mounted"`
	Terminated   bool                 `json:"terminated"`
}

type SetQueryReq struct {
	Query string `json:"query"`
}

type SelectUserReq struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type CompoundReq struct {
	ID int64 `uri:"id" binding:"required"`
}
