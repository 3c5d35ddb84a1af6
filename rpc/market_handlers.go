package rpc

import (
	"net/http"
)

type listParams struct {
	Caller   string `json:"caller"`
	ID       uint64 `json:"id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

type unlistParams struct {
	Caller string `json:"caller"`
	ID     uint64 `json:"id"`
}

type buyNativeParams struct {
	Caller string `json:"caller"`
	ID     uint64 `json:"id"`
	Value  string `json:"value"`
}

type buyCurrencyParams struct {
	Caller string `json:"caller"`
	ID     uint64 `json:"id"`
}

type sweepParams struct {
	Caller   string `json:"caller"`
	Currency string `json:"currency,omitempty"`
}

type listingResult struct {
	TokenID  uint64 `json:"tokenId"`
	Kind     string `json:"kind"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	ListedAt int64  `json:"listedAt"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params listParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeHexAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	currency, err := decodeOptionalHexAddr(params.Currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid currency address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	listing, err := s.node.ListToken(caller, params.ID, amount, currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to list token", err.Error())
		return
	}
	writeResult(w, req.ID, listingResult{
		TokenID:  listing.TokenID,
		Kind:     kindLabel(listing.Kind),
		Amount:   bigString(listing.Amount),
		Currency: hexAddr(listing.Currency),
		ListedAt: listing.ListedAt,
	})
}

func (s *Server) handleUnlist(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params unlistParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeHexAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.node.UnlistToken(caller, params.ID); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to unlist token", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params tokenIDParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	listing, ok, err := s.node.Listing(params.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to load listing", err.Error())
		return
	}
	if !ok {
		writeResult(w, req.ID, nil)
		return
	}
	writeResult(w, req.ID, listingResult{
		TokenID:  listing.TokenID,
		Kind:     kindLabel(listing.Kind),
		Amount:   bigString(listing.Amount),
		Currency: hexAddr(listing.Currency),
		ListedAt: listing.ListedAt,
	})
}

func (s *Server) handleBuyWithNative(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params buyNativeParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeHexAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	value, err := parseAmount(params.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.BuyWithNative(caller, params.ID, value); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "purchase failed", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

func (s *Server) handleBuyWithCurrency(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params buyCurrencyParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeHexAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if err := s.node.BuyWithCurrency(caller, params.ID); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "purchase failed", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params sweepParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeHexAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	currency, err := decodeOptionalHexAddr(params.Currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid currency address", err.Error())
		return
	}
	swept, err := s.node.SweepStrayFunds(caller, currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "sweep failed", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]string{"swept": bigString(swept)})
}
