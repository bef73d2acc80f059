package model

// Compound is a record persisted by the compound service. Structure is the
// SMILES string, which the service calls smiles_string.
type Compound struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Structure string `json:"smiles_string"`
}

type CompoundReq struct {
	Name      string `json:"name"`
	Structure string `json:"smiles_string"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type ShareReq struct {
	UserID int64 `json:"user_id"`
}

type ShareAck struct {
	Message string `json:"message"`
}

// ServiceErr is the error body the compound service answers with. FastAPI
// uses detail, other handlers use message.
type ServiceErr struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}
