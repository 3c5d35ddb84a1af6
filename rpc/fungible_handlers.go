package rpc

import (
	"net/http"
)

type approveParams struct {
	Caller   string `json:"caller"`
	Currency string `json:"currency"`
	Spender  string `json:"spender"`
	Amount   string `json:"amount"`
}

type balanceParams struct {
	Currency string `json:"currency"`
	Address  string `json:"address"`
}

type nativeBalanceParams struct {
	Address string `json:"address"`
}

type mintCurrencyParams struct {
	Caller   string `json:"caller"`
	Currency string `json:"currency"`
	To       string `json:"to"`
	Amount   string `json:"amount"`
}

type mintNativeParams struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type balanceResult struct {
	Amount string `json:"amount"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params approveParams
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
	spender, err := decodeHexAddr(params.Spender)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid spender address", err.Error())
		return
	}
	amount, err := parseOfferAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Approve(caller, currency, spender, amount); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to approve", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

func (s *Server) handleBalanceOf(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params balanceParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	currency, err := decodeHexAddr(params.Currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid currency address", err.Error())
		return
	}
	addr, err := decodeHexAddr(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	balance, err := s.node.BalanceOf(currency, addr)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to load balance", err.Error())
		return
	}
	writeResult(w, req.ID, balanceResult{Amount: bigString(balance)})
}

func (s *Server) handleNativeBalance(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params nativeBalanceParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	addr, err := decodeHexAddr(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	balance, err := s.node.NativeBalanceOf(addr)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "failed to load balance", err.Error())
		return
	}
	writeResult(w, req.ID, balanceResult{Amount: bigString(balance)})
}

func (s *Server) handleMintCurrency(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params mintCurrencyParams
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
	to, err := decodeHexAddr(params.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid recipient address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.MintCurrency(caller, currency, to, amount); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to mint", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

func (s *Server) handleMintNative(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params mintNativeParams
	if rpcErr := decodeSingleParam(req, &params); rpcErr != nil {
		writeError(w, http.StatusBadRequest, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	caller, err := decodeHexAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	to, err := decodeHexAddr(params.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid recipient address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.MintNative(caller, to, amount); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "failed to mint", err.Error())
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}
