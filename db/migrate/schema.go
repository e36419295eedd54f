package migrate

import (
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var money = map[string]string{dialect.Postgres: "numeric(12,2)"}

var (
	// CouplesColumns holds the columns for the "couples" table.
	CouplesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "couple_name", Type: field.TypeString, Default: ""},
		{Name: "bride_first_name", Type: field.TypeString, Default: ""},
		{Name: "bride_last_name", Type: field.TypeString, Default: ""},
		{Name: "bride_email", Type: field.TypeString, Default: ""},
		{Name: "bride_phone", Type: field.TypeString, Default: ""},
		{Name: "groom_first_name", Type: field.TypeString, Default: ""},
		{Name: "groom_last_name", Type: field.TypeString, Default: ""},
		{Name: "groom_email", Type: field.TypeString, Default: ""},
		{Name: "groom_phone", Type: field.TypeString, Default: ""},
		{Name: "wedding_date", Type: field.TypeString, Size: 10, Default: ""},
		{Name: "ceremony_location", Type: field.TypeString, Default: ""},
		{Name: "reception_venue", Type: field.TypeString, Default: ""},
		{Name: "package_type", Type: field.TypeString, Default: ""},
		{Name: "contract_total", Type: field.TypeFloat64, Nullable: true, SchemaType: money},
		{Name: "extras_total", Type: field.TypeFloat64, Nullable: true, SchemaType: money},
		{Name: "total_paid", Type: field.TypeFloat64, Default: 0, SchemaType: money},
		{Name: "balance_owing", Type: field.TypeFloat64, Nullable: true, SchemaType: money},
		{Name: "status", Type: field.TypeString, Default: "prospect"},
		{Name: "lead_source", Type: field.TypeString, Default: ""},
		{Name: "notes", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// CouplesTable holds the schema information for the "couples" table.
	CouplesTable = &schema.Table{
		Name:       "couples",
		Columns:    CouplesColumns,
		PrimaryKey: []*schema.Column{CouplesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "couple_wedding_date", Unique: false, Columns: []*schema.Column{CouplesColumns[10]}},
			{Name: "couple_couple_name", Unique: false, Columns: []*schema.Column{CouplesColumns[1]}},
		},
	}
	// PaymentsColumns holds the columns for the "payments" table.
	PaymentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "amount", Type: field.TypeFloat64, SchemaType: money},
		{Name: "paid_on", Type: field.TypeString, Size: 10, Default: ""},
		{Name: "method", Type: field.TypeString, Default: ""},
		{Name: "payer", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "couple_id", Type: field.TypeUUID},
	}
	// PaymentsTable holds the schema information for the "payments" table.
	PaymentsTable = &schema.Table{
		Name:       "payments",
		Columns:    PaymentsColumns,
		PrimaryKey: []*schema.Column{PaymentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "payments_couples_payments",
				Columns:    []*schema.Column{PaymentsColumns[6]},
				RefColumns: []*schema.Column{CouplesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}
	// ContractsColumns holds the columns for the "contracts" table.
	ContractsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "wedding_date", Type: field.TypeString, Size: 10, Default: ""},
		{Name: "package_type", Type: field.TypeString, Default: ""},
		{Name: "coverage_hours", Type: field.TypeFloat64, Nullable: true},
		{Name: "total", Type: field.TypeFloat64, Nullable: true, SchemaType: money},
		{Name: "deposit", Type: field.TypeFloat64, Nullable: true, SchemaType: money},
		{Name: "source_filename", Type: field.TypeString, Default: ""},
		{Name: "snapshot", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "couple_id", Type: field.TypeUUID},
	}
	// ContractsTable holds the schema information for the "contracts" table.
	ContractsTable = &schema.Table{
		Name:       "contracts",
		Columns:    ContractsColumns,
		PrimaryKey: []*schema.Column{ContractsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "contracts_couples_contracts",
				Columns:    []*schema.Column{ContractsColumns[9]},
				RefColumns: []*schema.Column{CouplesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}
	// ContractInstallmentsColumns holds the columns for the "contract_installments" table.
	ContractInstallmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "payment_number", Type: field.TypeInt},
		{Name: "due_description", Type: field.TypeString, Default: ""},
		{Name: "amount", Type: field.TypeFloat64, SchemaType: money},
		{Name: "due_date", Type: field.TypeString, Size: 10, Default: ""},
		{Name: "contract_id", Type: field.TypeUUID},
		{Name: "couple_id", Type: field.TypeUUID},
	}
	// ContractInstallmentsTable holds the schema information for the "contract_installments" table.
	ContractInstallmentsTable = &schema.Table{
		Name:       "contract_installments",
		Columns:    ContractInstallmentsColumns,
		PrimaryKey: []*schema.Column{ContractInstallmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "contract_installments_contracts_installments",
				Columns:    []*schema.Column{ContractInstallmentsColumns[5]},
				RefColumns: []*schema.Column{ContractsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "contract_installments_couples_installments",
				Columns:    []*schema.Column{ContractInstallmentsColumns[6]},
				RefColumns: []*schema.Column{CouplesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}
	// ContractSignaturesColumns holds the columns for the "contract_signatures" table.
	ContractSignaturesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "signer_name", Type: field.TypeString},
		{Name: "signed_date", Type: field.TypeString, Size: 10, Default: ""},
		{Name: "photographer_name", Type: field.TypeString, Default: ""},
		{Name: "contract_id", Type: field.TypeUUID},
	}
	// ContractSignaturesTable holds the schema information for the "contract_signatures" table.
	ContractSignaturesTable = &schema.Table{
		Name:       "contract_signatures",
		Columns:    ContractSignaturesColumns,
		PrimaryKey: []*schema.Column{ContractSignaturesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "contract_signatures_contracts_signatures",
				Columns:    []*schema.Column{ContractSignaturesColumns[4]},
				RefColumns: []*schema.Column{ContractsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}
	// ExtrasOrdersColumns holds the columns for the "extras_orders" table.
	ExtrasOrdersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "items", Type: field.TypeJSON},
		{Name: "inclusions", Type: field.TypeJSON},
		{Name: "total", Type: field.TypeFloat64, SchemaType: money},
		{Name: "status", Type: field.TypeString, Default: "quoted"},
		{Name: "order_date", Type: field.TypeString, Size: 10, Default: ""},
		{Name: "source_filename", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "couple_id", Type: field.TypeUUID},
	}
	// ExtrasOrdersTable holds the schema information for the "extras_orders" table.
	ExtrasOrdersTable = &schema.Table{
		Name:       "extras_orders",
		Columns:    ExtrasOrdersColumns,
		PrimaryKey: []*schema.Column{ExtrasOrdersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "extras_orders_couples_extras_orders",
				Columns:    []*schema.Column{ExtrasOrdersColumns[8]},
				RefColumns: []*schema.Column{CouplesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}
	// QuotesColumns holds the columns for the "quotes" table.
	QuotesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "package_type", Type: field.TypeString, Default: ""},
		{Name: "quoted_total", Type: field.TypeFloat64, Nullable: true, SchemaType: money},
		{Name: "quote_date", Type: field.TypeString, Size: 10, Default: ""},
		{Name: "lead_source", Type: field.TypeString, Default: ""},
		{Name: "source_filename", Type: field.TypeString, Default: ""},
		{Name: "snapshot", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "couple_id", Type: field.TypeUUID},
	}
	// QuotesTable holds the schema information for the "quotes" table.
	QuotesTable = &schema.Table{
		Name:       "quotes",
		Columns:    QuotesColumns,
		PrimaryKey: []*schema.Column{QuotesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quotes_couples_quotes",
				Columns:    []*schema.Column{QuotesColumns[8]},
				RefColumns: []*schema.Column{CouplesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}
	// DeliverablesColumns holds the columns for the "deliverables" table.
	DeliverablesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "kind", Type: field.TypeString},
		{Name: "status", Type: field.TypeString, Default: "pending"},
		{Name: "due_date", Type: field.TypeString, Size: 10, Default: ""},
		{Name: "delivered_at", Type: field.TypeTime, Nullable: true},
		{Name: "couple_id", Type: field.TypeUUID},
	}
	// DeliverablesTable holds the schema information for the "deliverables" table.
	DeliverablesTable = &schema.Table{
		Name:       "deliverables",
		Columns:    DeliverablesColumns,
		PrimaryKey: []*schema.Column{DeliverablesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "deliverables_couples_deliverables",
				Columns:    []*schema.Column{DeliverablesColumns[5]},
				RefColumns: []*schema.Column{CouplesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}
	// StaffAssignmentsColumns holds the columns for the "staff_assignments" table.
	StaffAssignmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "staff_name", Type: field.TypeString},
		{Name: "role", Type: field.TypeString, Default: ""},
		{Name: "couple_id", Type: field.TypeUUID},
	}
	// StaffAssignmentsTable holds the schema information for the "staff_assignments" table.
	StaffAssignmentsTable = &schema.Table{
		Name:       "staff_assignments",
		Columns:    StaffAssignmentsColumns,
		PrimaryKey: []*schema.Column{StaffAssignmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "staff_assignments_couples_staff",
				Columns:    []*schema.Column{StaffAssignmentsColumns[3]},
				RefColumns: []*schema.Column{CouplesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		CouplesTable,
		PaymentsTable,
		ContractsTable,
		ContractInstallmentsTable,
		ContractSignaturesTable,
		ExtrasOrdersTable,
		QuotesTable,
		DeliverablesTable,
		StaffAssignmentsTable,
	}
)

func init() {
	PaymentsTable.ForeignKeys[0].RefTable = CouplesTable
	ContractsTable.ForeignKeys[0].RefTable = CouplesTable
	ContractInstallmentsTable.ForeignKeys[0].RefTable = ContractsTable
	ContractInstallmentsTable.ForeignKeys[1].RefTable = CouplesTable
	ContractSignaturesTable.ForeignKeys[0].RefTable = ContractsTable
	ExtrasOrdersTable.ForeignKeys[0].RefTable = CouplesTable
	QuotesTable.ForeignKeys[0].RefTable = CouplesTable
	DeliverablesTable.ForeignKeys[0].RefTable = CouplesTable
	StaffAssignmentsTable.ForeignKeys[0].RefTable = CouplesTable
}
