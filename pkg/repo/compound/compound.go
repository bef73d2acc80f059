package compound

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/scienceol/chemdash/internal/config"
	"github.com/scienceol/chemdash/pkg/common/code"
	"github.com/scienceol/chemdash/pkg/middleware/logger"
	"github.com/scienceol/chemdash/pkg/repo"
	"github.com/scienceol/chemdash/pkg/repo/model"
)

// alreadySharedPhrase is what the service answers when the target user
// already holds the compound.
const alreadySharedPhrase = "User already has this compound"

type compoundImpl struct {
	client *resty.Client
}

func New() repo.CompoundRepo {
	conf := config.Global().Remote
	return NewWithAddr(conf.Addr, conf.RequestTimeout)
}

func NewWithAddr(addr string, timeout time.Duration) repo.CompoundRepo {
	return &compoundImpl{
		client: resty.New().
			SetTimeout(timeout).
			EnableTrace().
			SetBaseURL(addr).
			SetHeader("Content-Type", "application/json"),
	}
}

func (c *compoundImpl) ListCompounds(ctx context.Context, credential string) ([]*model.Compound, error) {
	compounds := make([]*model.Compound, 0)
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(credential).
		SetResult(&compounds).
		Get("/compounds")
	if err != nil {
		logger.Errorf(ctx, "ListCompounds http err: %+v", err)
		return nil, code.CompoundQueryErr.WithErr(err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, code.UnLogin
	}
	if !resp.IsSuccess() {
		logger.Errorf(ctx, "ListCompounds http code: %d", resp.StatusCode())
		return nil, code.CompoundQueryErr.WithMsgf("http code: %d", resp.StatusCode())
	}
	return compounds, nil
}

func (c *compoundImpl) CreateCompound(ctx context.Context, req *model.CompoundReq, credential string) (*model.Compound, error) {
	data := &model.Compound{}
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(credential).
		SetBody(req).
		SetResult(data).
		Post("/compounds")
	if err != nil {
		logger.Errorf(ctx, "CreateCompound http err: %+v", err)
		return nil, code.CompoundCreateErr.WithErr(err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, code.UnLogin
	}
	if !resp.IsSuccess() {
		logger.Errorf(ctx, "CreateCompound http code: %d, body: %s", resp.StatusCode(), resp.String())
		return nil, code.CompoundCreateErr.WithMsgf("http code: %d", resp.StatusCode())
	}
	return data, nil
}

func (c *compoundImpl) DeleteCompound(ctx context.Context, id int64, credential string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(credential).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Delete("/compounds/{id}")
	if err != nil {
		logger.Errorf(ctx, "DeleteCompound http err: %+v", err)
		return code.CompoundDeleteErr.WithErr(err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return code.UnLogin
	}
	if !resp.IsSuccess() {
		logger.Errorf(ctx, "DeleteCompound id: %d, http code: %d", id, resp.StatusCode())
		return code.CompoundDeleteErr.WithMsgf("http code: %d", resp.StatusCode())
	}
	return nil
}

func (c *compoundImpl) ListUsers(ctx context.Context, credential string) ([]*model.User, error) {
	users := make([]*model.User, 0)
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(credential).
		SetResult(&users).
		Get("/users")
	if err != nil {
		logger.Errorf(ctx, "ListUsers http err: %+v", err)
		return nil, code.UserQueryErr.WithErr(err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, code.UnLogin
	}
	if !resp.IsSuccess() {
		logger.Errorf(ctx, "ListUsers http code: %d", resp.StatusCode())
		return nil, code.UserQueryErr.WithMsgf("http code: %d", resp.StatusCode())
	}
	return users, nil
}

func (c *compoundImpl) ShareCompound(ctx context.Context, compoundID, userID int64, credential string) (*model.ShareAck, error) {
	ack := &model.ShareAck{}
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(credential).
		SetPathParam("id", strconv.FormatInt(compoundID, 10)).
		SetBody(&model.ShareReq{UserID: userID}).
		SetResult(ack).
		Post("/compounds/{id}/share")
	if err != nil {
		logger.Errorf(ctx, "ShareCompound http err: %+v", err)
		return nil, code.CompoundShareErr.WithErr(err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, code.UnLogin
	}
	if !resp.IsSuccess() {
		reason := failureReason(resp.Body())
		logger.Errorf(ctx, "ShareCompound compound: %d, user: %d, http code: %d, reason: %s",
			compoundID, userID, resp.StatusCode(), reason)
		if strings.Contains(reason, alreadySharedPhrase) {
			return nil, code.CompoundAlreadySharedErr.WithMsg(reason)
		}
		return nil, code.CompoundShareErr.WithMsgf("http code: %d", resp.StatusCode())
	}
	return ack, nil
}

// failureReason pulls the human readable reason out of an error body, falling
// back to the raw body when it is not the usual json shape.
func failureReason(body []byte) string {
	e := &model.ServiceErr{}
	if err := json.Unmarshal(body, e); err == nil {
		if e.Detail != "" {
			return e.Detail
		}
		if e.Message != "" {
			return e.Message
		}
	}
	return string(body)
}
