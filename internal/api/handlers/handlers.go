package handlers

import (
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/api/handlers/common"
	"github/chapool/go-trader/internal/api/handlers/delegate"
	"github/chapool/go-trader/internal/api/handlers/trade"
)

func AttachAllRoutes(s *api.Server) {
	s.Router.Routes = append(s.Router.Routes,
		common.GetReadyRoute(s),
		common.GetHealthyRoute(s),
		delegate.GetStatusRoute(s),
		delegate.GetCheckAllowanceRoute(s),
		delegate.GetTradingContractRoute(s),
		delegate.PostApproveUSDCRoute(s),
		delegate.PostSetupRoute(s),
		delegate.PostRemoveRoute(s),
		trade.PostBuildOpenRoute(s),
		trade.PostBuildCloseRoute(s),
		trade.PostBuildUpdateTpSlRoute(s),
		trade.PostPnLRoute(s),
		trade.GetOpenTradesRoute(s),
		trade.PostOpenTradesPnLRoute(s),
	)
}
