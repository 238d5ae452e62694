package policy

import "emall-backend/internal/apperr"

const (
	RoleCustomer  = "customer"
	RoleShopOwner = "shop_owner"
	RoleAdmin     = "admin"
)

type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) Authenticated() bool {
	return p.UserID != 0 && p.Role != ""
}

type Action string

const (
	ActionViewCart            Action = "cart:view"
	ActionModifyCart          Action = "cart:modify"
	ActionCheckout            Action = "order:checkout"
	ActionViewOrder           Action = "order:view"
	ActionManageAddresses     Action = "address:manage"
	ActionManageNotifications Action = "notification:manage"

	ActionManageProduct       Action = "product:manage"
	ActionManageShop          Action = "shop:manage"
	ActionUpgradeSubscription Action = "subscription:upgrade"

	ActionUpdateOrderStatus Action = "order:update_status"
	ActionAdminister        Action = "admin:write"
	ActionViewReports       Action = "admin:reports"
)

// Resource describes what the action targets. OwnerID is the user that
// owns it: the cart/order/address holder, or the owner of the shop.
type Resource struct {
	OwnerID uint
}

type Decision struct {
	Allowed bool
	Reason  string
}

func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == reasonAnonymous {
		return apperr.Unauthenticated("authentication required")
	}
	return apperr.Forbidden(d.Reason)
}

const reasonAnonymous = "anonymous principal"

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Authorize decides whether principal may perform action on resource.
// It has no side effects and knows nothing about the transport.
func Authorize(p Principal, action Action, res Resource) Decision {
	if !p.Authenticated() {
		return deny(reasonAnonymous)
	}
	if p.Role == RoleAdmin {
		return allow()
	}

	switch action {
	case ActionViewCart, ActionModifyCart, ActionCheckout, ActionViewOrder,
		ActionManageAddresses, ActionManageNotifications:
		if res.OwnerID == p.UserID {
			return allow()
		}
		return deny("resource belongs to another user")

	case ActionManageProduct, ActionManageShop, ActionUpgradeSubscription:
		if p.Role != RoleShopOwner {
			return deny("shop owner role required")
		}
		if res.OwnerID != p.UserID {
			return deny("shop belongs to another owner")
		}
		return allow()

	case ActionUpdateOrderStatus, ActionAdminister, ActionViewReports:
		return deny("admin role required")
	}

	return deny("unknown action")
}

// Require is Authorize reduced to an error.
func Require(p Principal, action Action, res Resource) error {
	return Authorize(p, action, res).Err()
}
