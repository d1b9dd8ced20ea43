package model

import "strconv"

// Table names in generation order.
const (
	TableCustomers      = "customers"
	TableProductCatalog = "product_catalog"
	TableShoppingCarts  = "shopping_carts"
	TableCartItems      = "cart_items"
	TableOrders         = "orders"
	TableOrderItems     = "order_items"
	TableReturns        = "returns"
	TableReturnItems    = "return_items"
)

// Columns maps each table to its CSV column order. The order is part of the
// output contract: two runs with the same seed must be byte-identical.
var Columns = map[string][]string{
	TableCustomers: {
		"customer_id", "first_name", "last_name", "email", "phone_number",
		"age", "gender", "loyalty_tier", "initial_loyalty_tier", "signup_date",
		"customer_status", "email_verified", "marketing_opt_in",
		"loyalty_enrollment_date", "signup_channel", "mailing_address",
		"billing_address", "clv_bucket", "is_guest",
	},
	TableProductCatalog: {
		"product_id", "product_name", "category", "unit_price", "inventory_quantity",
	},
	TableShoppingCarts: {
		"cart_id", "customer_id", "created_at", "updated_at", "status",
		"cart_total", "is_reactivation_cart",
	},
	TableCartItems: {
		"cart_item_id", "cart_id", "product_id", "product_name", "category",
		"quantity", "unit_price", "added_at",
	},
	TableOrders: {
		"order_id", "order_date", "customer_id", "email", "order_channel",
		"is_expedited", "customer_tier", "clv_bucket", "order_total",
		"total_items", "payment_method", "shipping_speed", "shipping_cost",
		"agent_id", "shipping_address", "billing_address", "is_reactivated",
	},
	TableOrderItems: {
		"order_item_id", "order_id", "product_id", "product_name", "category",
		"quantity", "unit_price",
	},
	TableReturns: {
		"return_id", "order_id", "customer_id", "email", "return_type",
		"return_date", "reason", "refunded_amount", "return_channel",
		"refund_method", "agent_id",
	},
	TableReturnItems: {
		"return_item_id", "return_id", "order_id", "product_id", "product_name",
		"category", "quantity_returned", "unit_price", "refunded_amount",
	},
}

// Record renders the customer in Columns[TableCustomers] order.
func (c *Customer) Record() []string {
	return []string{
		c.CustomerID, c.FirstName, c.LastName, c.Email, c.PhoneNumber,
		formatAge(c.Age), c.Gender, c.LoyaltyTier, c.InitialLoyaltyTier,
		formatDate(c.SignupDate), c.CustomerStatus, formatBool(c.EmailVerified),
		formatBool(c.MarketingOptIn), formatDate(c.LoyaltyEnrollDate),
		c.SignupChannel, c.MailingAddress, c.BillingAddress, c.CLVBucket,
		formatBool(c.IsGuest),
	}
}

func (p *Product) Record() []string {
	return []string{
		strconv.Itoa(p.ProductID), p.ProductName, p.Category,
		formatMoney(p.UnitPrice), strconv.Itoa(p.InventoryQuantity),
	}
}

func (c *Cart) Record() []string {
	return []string{
		c.CartID, c.CustomerID, formatTimestamp(c.CreatedAt),
		formatTimestamp(c.UpdatedAt), c.Status, formatMoney(c.CartTotal),
		formatBool(c.IsReactivationCart),
	}
}

func (i *CartItem) Record() []string {
	return []string{
		strconv.Itoa(i.CartItemID), i.CartID, strconv.Itoa(i.ProductID),
		i.ProductName, i.Category, strconv.Itoa(i.Quantity),
		formatMoney(i.UnitPrice), formatTimestamp(i.AddedAt),
	}
}

func (o *Order) Record() []string {
	return []string{
		o.OrderID, formatDate(o.OrderDate), o.CustomerID, o.Email,
		o.OrderChannel, formatBool(o.IsExpedited), o.CustomerTier, o.CLVBucket,
		formatMoney(o.OrderTotal), strconv.Itoa(o.TotalItems), o.PaymentMethod,
		o.ShippingSpeed, formatMoney(o.ShippingCost), o.AgentID,
		o.ShippingAddress, o.BillingAddress, formatBool(o.IsReactivated),
	}
}

func (i *OrderItem) Record() []string {
	return []string{
		strconv.Itoa(i.OrderItemID), i.OrderID, strconv.Itoa(i.ProductID),
		i.ProductName, i.Category, strconv.Itoa(i.Quantity),
		formatMoney(i.UnitPrice),
	}
}

func (r *Return) Record() []string {
	return []string{
		r.ReturnID, r.OrderID, r.CustomerID, r.Email, r.ReturnType,
		formatDate(r.ReturnDate), r.Reason, formatMoney(r.RefundedAmount),
		r.ReturnChannel, r.RefundMethod, r.AgentID,
	}
}

func (i *ReturnItem) Record() []string {
	return []string{
		strconv.Itoa(i.ReturnItemID), i.ReturnID, i.OrderID,
		strconv.Itoa(i.ProductID), i.ProductName, i.Category,
		strconv.Itoa(i.QuantityReturned), formatMoney(i.UnitPrice),
		formatMoney(i.RefundedAmount),
	}
}
