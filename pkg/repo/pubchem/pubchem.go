package pubchem

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/scienceol/chemdash/internal/config"
	"github.com/scienceol/chemdash/pkg/middleware/logger"
	"github.com/scienceol/chemdash/pkg/repo"
)

type property struct {
	CID       int64  `json:"CID"`
	IUPACName string `json:"IUPACName"`
}

type PropertyResponse struct {
	PropertyTable struct {
		Properties []property `json:"Properties"`
	} `json:"PropertyTable"`
}

type pubchemImpl struct {
	client *resty.Client
}

func NewPubChemRepo() repo.NameRepo {
	conf := config.Global().RPC.PubChem
	return NewWithAddr(conf.Addr, conf.Timeout)
}

func NewWithAddr(addr string, timeout time.Duration) repo.NameRepo {
	return &pubchemImpl{
		client: resty.New().
			SetTimeout(timeout).
			EnableTrace().
			SetBaseURL(addr),
	}
}

// LookupName asks PubChem for the IUPAC name of a SMILES string. Every failure
// degrades to repo.NameNotFound so a search is never aborted by the lookup.
func (p *pubchemImpl) LookupName(ctx context.Context, structure string) string {
	propResp := &PropertyResponse{}
	res, err := p.client.R().
		SetContext(ctx).
		SetPathParam("smiles", structure).
		SetResult(propResp).
		Get("/rest/pug/compound/smiles/{smiles}/property/IUPACName/JSON")
	if err != nil {
		logger.Warnf(ctx, "PubChem name lookup failed smiles: %s, err: %v", structure, err)
		return repo.NameNotFound
	}

	if res.StatusCode() != http.StatusOK {
		logger.Warnf(ctx, "PubChem name lookup smiles: %s, status: %d, using placeholder name", structure, res.StatusCode())
		return repo.NameNotFound
	}

	if len(propResp.PropertyTable.Properties) == 0 {
		return repo.NameNotFound
	}

	name := strings.TrimSpace(propResp.PropertyTable.Properties[0].IUPACName)
	if name == "" {
		return repo.NameNotFound
	}
	return name
}
