package rpc

import (
	"net/http"

	"curio/core"
)

type createParams struct {
	Caller       string `json:"caller"`
	URI          string `json:"uri"`
	Currency     string `json:"currency"`
	BaseAmount   string `json:"baseAmount"`
	GrowthBps    uint32 `json:"growthBps,omitempty"`
	IntervalSecs uint64 `json:"intervalSecs,omitempty"`
}

type tokenResult struct {
	ID        uint64 `json:"id"`
	Creator   string `json:"creator"`
	Owner     string `json:"owner"`
	URI       string `json:"uri"`
	CreatedAt int64  `json:"createdAt"`
}

type createResult struct {
	Token        tokenResult `json:"token"`
	Currency     string      `json:"currency"`
	BaseAmount   string      `json:"baseAmount"`
	GrowthBps    uint32      `json:"growthBps"`
	IntervalSecs uint64      `json:"intervalSecs"`
}

type setMetadataParams struct {
	Caller string `json:"caller"`
	ID     uint64 `json:"id"`
	URI    string `json:"uri"`
}

type tokenIDParams struct {
	ID uint64 `json:"id"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params createParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeHexAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	currency, err := decodeHexAddr(params.Currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid currency address", err.Error())
		return
	}
	base, err := parseOfferAmount(params.BaseAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	token, rec, err := s.node.CreateAsset(caller, params.URI, core.CommissionParams{
		Currency:     currency,
		Base:         base,
		GrowthBps:    params.GrowthBps,
		IntervalSecs: params.IntervalSecs,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to create asset", err.Error())
		return
	}
	writeResult(w, req.ID, createResult{
		Token: tokenResult{
			ID:        token.ID,
			Creator:   hexAddr(token.Creator),
			Owner:     hexAddr(token.Owner),
			URI:       token.URI,
			CreatedAt: token.CreatedAt,
		},
		Currency:     hexAddr(rec.Currency),
		BaseAmount:   bigString(rec.BaseAmount),
		GrowthBps:    rec.GrowthBps,
		IntervalSecs: rec.IntervalSecs,
	})
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params tokenIDParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	token, err := s.node.Token(params.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, req.ID, codeInvalidParams, "token not found", err.Error())
		return
	}
	writeResult(w, req.ID, tokenResult{
		ID:        token.ID,
		Creator:   hexAddr(token.Creator),
		Owner:     hexAddr(token.Owner),
		URI:       token.URI,
		CreatedAt: token.CreatedAt,
	})
}

func (s *Server) handleOwnerOf(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params tokenIDParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	owner, err := s.node.OwnerOf(params.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, req.ID, codeInvalidParams, "token not found", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]string{"owner": hexAddr(owner)})
}

func (s *Server) handleSetMetadataURI(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params setMetadataParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeHexAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.node.SetMetadataURI(caller, params.ID, params.URI); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to set metadata", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

func (s *Server) handleVault(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	writeResult(w, req.ID, map[string]string{"vault": hexAddr(s.node.Vault())})
}
