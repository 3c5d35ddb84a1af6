package rpc

import (
	"net/http"
)

type registerOfferParams struct {
	Caller string `json:"caller"`
	ID     uint64 `json:"id"`
	Amount string `json:"amount"`
}

type commissionResult struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

type offerResult struct {
	Payer  string `json:"payer"`
	Amount string `json:"amount"`
}

func (s *Server) handleGetCommission(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params tokenIDParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	currency, amount, err := s.node.GetCommission(params.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, req.ID, codeInvalidParams, "failed to compute commission", err.Error())
		return
	}
	writeResult(w, req.ID, commissionResult{Currency: hexAddr(currency), Amount: bigString(amount)})
}

func (s *Server) handleRegisterOffer(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params registerOfferParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeHexAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	amount, err := parseOfferAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.RegisterOffer(caller, params.ID, amount); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to register offer", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

func (s *Server) handleGetOffers(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params tokenIDParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	entries, err := s.node.Offers(params.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to load offers", err.Error())
		return
	}
	results := make([]offerResult, 0, len(entries))
	for _, entry := range entries {
		results = append(results, offerResult{Payer: hexAddr(entry.Payer), Amount: bigString(entry.Amount)})
	}
	writeResult(w, req.ID, results)
}
