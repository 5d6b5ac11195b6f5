package handlers

import (
	"github.com/amoraapp/ledger/internal/app/service/billing"
	"github.com/amoraapp/ledger/internal/app/service/premium"
	"github.com/amoraapp/ledger/internal/app/service/profile"
	"github.com/amoraapp/ledger/internal/app/service/stats"
	"github.com/amoraapp/ledger/pkg/response"
)

// Concrete response envelope instantiations for swagger documentation only.

type RespOK = response.APIResponse[any]

type RespEntitlement = response.APIResponse[*profile.Entitlement]

type RespSubscriptionList = response.APIResponse[[]*SubscriptionItem]

type RespCanPurchase = response.APIResponse[*billing.CanPurchaseResult]

type RespCreditMutation = response.APIResponse[*CreditMutationResponse]

type RespRevokePremium = response.APIResponse[*premium.RevokeResult]

type RespOrderList = response.APIResponse[*billing.ScanOrdersResponse]

type RespStatsOverview = response.APIResponse[*stats.Overview]
