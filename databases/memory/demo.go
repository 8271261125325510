package memory

import (
	"context"
	"fmt"

	"github.com/melkeydev/logistics-admin/types"
)

type seedTable struct {
	name    string
	columns []string
	rows    []types.Row
}

var demoTables = []seedTable{
	{
		name:    "vendors",
		columns: []string{"name", "category", "email", "phone", "address", "status"},
		rows: []types.Row{
			{"name": "FastFood Co.", "category": "Restaurant", "email": "contact@fastfood.com", "phone": "+234 805 123 4567", "address": "123 Business Ave, Lagos", "status": "active"},
			{"name": "Electronics Plus", "category": "Electronics", "email": "info@electronicsplus.com", "phone": "+234 806 234 5678", "address": "456 Tech Street, Abuja", "status": "active"},
			{"name": "Fresh Groceries", "category": "Grocery", "email": "orders@freshgroceries.com", "phone": "+234 807 345 6789", "address": "789 Market Square, Port Harcourt", "status": "active"},
			{"name": "Fashion Hub", "category": "Clothing", "email": "hello@fashionhub.com", "phone": "+234 808 456 7890", "address": "321 Style Boulevard, Kano", "status": "inactive"},
			{"name": "Book Haven", "category": "Books", "email": "contact@bookhaven.com", "phone": "+234 809 567 8901", "address": "654 Literature Lane, Ibadan", "status": "pending"},
		},
	},
	{
		name:    "deliveries",
		columns: []string{"type", "location", "description", "vendor_id", "user_id", "status", "amount", "completed_at"},
		rows: []types.Row{
			{"type": "instant", "location": "123 Main St", "description": "Lunch order", "vendor_id": int64(1), "user_id": "USR001", "status": "completed", "amount": 4599},
			{"type": "same_day", "location": "456 Oak Ave", "description": "Laptop charger", "vendor_id": int64(2), "user_id": "USR002", "status": "in_transit", "amount": 15675},
			{"type": "interstate", "location": "Business District", "description": "Office supplies", "vendor_id": int64(3), "user_id": "USR003", "status": "pending", "amount": 78950},
			{"type": "bulk", "location": "Multiple Locations", "description": "Retail restock", "vendor_id": int64(3), "user_id": "USR004", "status": "cancelled", "amount": 234500},
		},
	},
	{
		name:    "stores",
		columns: []string{"name", "address", "manager", "phone", "status"},
		rows: []types.Row{
			{"name": "Downtown Hub", "address": "123 Main Street, Lagos Island", "manager": "Alice Johnson", "phone": "+234 805 123 4567", "status": "active"},
			{"name": "Uptown Express", "address": "456 Oak Avenue, Victoria Island", "manager": "Bob Smith", "phone": "+234 806 234 5678", "status": "active"},
			{"name": "Westside Station", "address": "789 Pine Road, Ikeja", "manager": "Carol Davis", "phone": "+234 807 345 6789", "status": "maintenance"},
		},
	},
	{
		name:    "users",
		columns: []string{"name", "email", "phone", "role", "status"},
		rows: []types.Row{
			{"name": "John Doe", "email": "john.doe@email.com", "phone": "+234 805 123 4567", "role": "customer", "status": "active"},
			{"name": "Jane Smith", "email": "jane.smith@email.com", "phone": "+234 806 234 5678", "role": "driver", "status": "active"},
			{"name": "Mike Johnson", "email": "mike.johnson@email.com", "phone": "+234 807 345 6789", "role": "customer", "status": "inactive"},
		},
	},
	{
		name:    "payments",
		columns: []string{"transaction_id", "delivery_id", "amount", "method", "status", "details"},
		rows: []types.Row{
			{"transaction_id": "TXN-2024-001", "delivery_id": int64(1), "amount": 4599, "method": "credit_card", "status": "completed", "details": map[string]any{"fee": 184, "for": "delivery"}},
			{"transaction_id": "TXN-2024-002", "delivery_id": int64(2), "amount": 15675, "method": "bank_transfer", "status": "pending", "details": map[string]any{"fee": 470, "for": "shopping"}},
			{"transaction_id": "TXN-2024-003", "delivery_id": int64(3), "amount": 78950, "method": "wallet", "status": "failed"},
		},
	},
	{
		name:    "support_tickets",
		columns: []string{"subject", "customer", "email", "priority", "category", "status", "tags"},
		rows: []types.Row{
			{"subject": "Delivery not received", "customer": "John Doe", "email": "john.doe@email.com", "priority": "high", "category": "delivery", "status": "open", "tags": []any{"urgent"}},
			{"subject": "Payment not processed", "customer": "Jane Smith", "email": "jane.smith@email.com", "priority": "medium", "category": "payment", "status": "in_progress"},
			{"subject": "Account access problem", "customer": "Mike Johnson", "email": "mike.johnson@email.com", "priority": "low", "category": "account", "status": "resolved"},
		},
	},
}

// SeedDemo creates the dashboard tables and fills them with sample records.
func SeedDemo(ctx context.Context, c *MemoryConnector) error {
	for _, t := range demoTables {
		if err := c.CreateTable(t.name, t.columns...); err != nil {
			return fmt.Errorf("seed %s: %w", t.name, err)
		}
		if _, err := c.Insert(ctx, t.name, t.rows); err != nil {
			return fmt.Errorf("seed %s: %w", t.name, err)
		}
	}
	return nil
}
