// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/canbus-network/canbus/api/utils"
	cnode "github.com/canbus-network/canbus/node"
	"github.com/canbus-network/canbus/runtime"
)

type Head struct {
	Number       uint32 `json:"number"`
	PendingCalls int    `json:"pendingCalls"`
}

type Node struct {
	node *cnode.Node
	pool *cnode.CallPool
}

// New returns the node endpoints. Calls are only accepted when pool is not nil.
func New(n *cnode.Node, pool *cnode.CallPool) *Node {
	return &Node{
		n,
		pool,
	}
}

func (n *Node) handleGetHead(w http.ResponseWriter, _ *http.Request) error {
	head := &Head{Number: n.node.Head()}
	if n.pool != nil {
		head.PendingCalls = n.pool.Len()
	}
	return utils.WriteJSON(w, head)
}

func (n *Node) handleSubmitCall(w http.ResponseWriter, req *http.Request) error {
	if n.pool == nil {
		return utils.Forbidden(errors.New("calls are not accepted by this node"))
	}
	var call runtime.Call
	if err := utils.ParseJSON(req.Body, &call); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := n.pool.Submit(&call); err != nil {
		if errors.Is(err, cnode.ErrCallPoolFull) {
			return utils.HTTPError(err, http.StatusServiceUnavailable)
		}
		return utils.BadRequest(err)
	}
	return utils.WriteJSON(w, utils.M{"queued": true})
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/head").
		Methods(http.MethodGet).
		Name("GET /node/head").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetHead))
	sub.Path("/calls").
		Methods(http.MethodPost).
		Name("POST /node/calls").
		HandlerFunc(utils.WrapHandlerFunc(n.handleSubmitCall))
}
