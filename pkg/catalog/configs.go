package catalog

// registry holds the static process configurations, keyed by process id.
// Iteration order for global scans comes from processOrder.
var registry = map[string]*ProcessConfig{
	"O2C": {
		ID:          "O2C",
		Name:        "Order to Cash",
		Description: "Sales order processing from order entry to incoming payment",
		CaseID: CaseIDConfig{
			Primary: CaseIDRef{Table: "VBAK", Field: "VBELN"},
			Correlations: []CaseIDRef{
				{Table: "LIKP", Field: "VBELN"},
				{Table: "VBRK", Field: "VBELN"},
				{Table: "VBFA", Field: "VBELV"},
			},
		},
		Tables: map[string]TableConfig{
			"VBAK": {Type: TableRecord, Description: "Sales document header",
				Fields: []string{"VBELN", "ERDAT", "ERZET", "ERNAM", "AUART", "VKORG", "KUNNR", "NETWR"}},
			"VBAP": {Type: TableDetail, Description: "Sales document item",
				Fields: []string{"VBELN", "POSNR", "MATNR", "KWMENG", "NETWR"}},
			"LIKP": {Type: TableTransaction, Description: "Delivery header",
				Fields: []string{"VBELN", "ERDAT", "ERZET", "ERNAM", "WADAT_IST", "LFART"}},
			"VBRK": {Type: TableTransaction, Description: "Billing document header",
				Fields: []string{"VBELN", "ERDAT", "ERZET", "ERNAM", "FKART", "NETWR"}},
			"VBFA": {Type: TableFlow, Description: "Sales document flow",
				Fields: []string{"VBELV", "VBELN", "VBTYP_N", "ERDAT", "ERZET"}},
			"VBUK": {Type: TableStatus, Description: "Sales document header status", ECCOnly: true,
				Fields: []string{"VBELN", "GBSTK", "LFSTK", "FKSTK"}},
			"VBUP": {Type: TableStatus, Description: "Sales document item status", ECCOnly: true,
				Fields: []string{"VBELN", "POSNR", "GBSTA", "LFSTA"}},
			"CDHDR": {Type: TableChange, Description: "Change document header",
				Fields: []string{"OBJECTCLAS", "OBJECTID", "CHANGENR", "USERNAME", "UDATE", "UTIME", "TCODE"}},
			"KNA1": {Type: TableMaster, Description: "Customer master",
				Fields: []string{"KUNNR", "NAME1", "LAND1"}},
		},
		TcodeMap: map[string]string{
			"VA01":  "Create Sales Order",
			"VA02":  "Change Sales Order",
			"VKM3":  "Credit Check",
			"VL01N": "Create Delivery",
			"VL02N": "Change Delivery",
			"VL09":  "Reverse Goods Issue",
			"VF01":  "Create Invoice",
			"VF02":  "Change Invoice",
			"F-28":  "Receive Payment",
		},
		ReferenceActivities: []string{
			"Create Sales Order", "Credit Check", "Create Delivery",
			"Goods Issue", "Create Invoice", "Receive Payment",
		},
		KPIs: map[string]KPISpec{
			"order_to_delivery": {Type: "transition", From: "Create Sales Order", To: "Create Delivery",
				Target: 3, Unit: "days", Description: "Order entry to delivery creation"},
			"delivery_to_invoice": {Type: "transition", From: "Goods Issue", To: "Create Invoice",
				Target: 2, Unit: "days", Description: "Goods issue to billing"},
			"invoice_to_cash": {Type: "transition", From: "Create Invoice", To: "Receive Payment",
				Target: 30, Unit: "days", Description: "Days sales outstanding"},
			"order_change_ratio": {Type: "ratio", Numerator: "Change Sales Order", Denominator: "Create Sales Order",
				Target: 10, Description: "Share of orders changed after entry"},
		},
		S4HANA: S4Config{
			TableReplacements: map[string]string{"VBUK": "", "VBUP": ""},
			FieldMigrations: []FieldMigration{
				{SourceTable: "VBUK", SourceField: "GBSTK", TargetTable: "VBAK", TargetField: "GBSTK"},
				{SourceTable: "VBUP", SourceField: "GBSTA", TargetTable: "VBAP", TargetField: "GBSTA"},
			},
		},
		Enrichment: []string{"customer_segment", "credit_rating"},
	},

	"P2P": {
		ID:          "P2P",
		Name:        "Procure to Pay",
		Description: "Purchasing from requisition to vendor payment",
		CaseID: CaseIDConfig{
			Primary: CaseIDRef{Table: "EKKO", Field: "EBELN"},
			Correlations: []CaseIDRef{
				{Table: "EKPO", Field: "EBELN"},
				{Table: "EKBE", Field: "EBELN"},
				{Table: "RBKP", Field: "BELNR"},
			},
		},
		Tables: map[string]TableConfig{
			"EBAN": {Type: TableRecord, Description: "Purchase requisition",
				Fields: []string{"BANFN", "BNFPO", "ERDAT", "ERNAM", "MATNR", "MENGE"}},
			"EKKO": {Type: TableRecord, Description: "Purchasing document header",
				Fields: []string{"EBELN", "AEDAT", "ERNAM", "BSART", "LIFNR", "EKORG", "NETWR"}},
			"EKPO": {Type: TableDetail, Description: "Purchasing document item",
				Fields: []string{"EBELN", "EBELP", "MATNR", "MENGE", "NETPR"}},
			"EKBE": {Type: TableFlow, Description: "Purchasing document history",
				Fields: []string{"EBELN", "EBELP", "VGABE", "BELNR", "BUDAT", "CPUDT", "CPUTM", "ERNAM"}},
			"MKPF": {Type: TableTransaction, Description: "Material document header",
				Fields: []string{"MBLNR", "MJAHR", "BUDAT", "CPUDT", "CPUTM", "USNAM", "TCODE2"}},
			"RBKP": {Type: TableTransaction, Description: "Invoice receipt header",
				Fields: []string{"BELNR", "GJAHR", "BUDAT", "CPUDT", "CPUTM", "USNAM", "LIFNR"}},
			"BKPF": {Type: TableTransaction, Description: "Accounting document header",
				Fields: []string{"BELNR", "BUKRS", "GJAHR", "BUDAT", "CPUDT", "USNAM", "TCODE"}},
			"CDHDR": {Type: TableChange, Description: "Change document header",
				Fields: []string{"OBJECTCLAS", "OBJECTID", "CHANGENR", "USERNAME", "UDATE", "UTIME", "TCODE"}},
			"LFA1": {Type: TableMaster, Description: "Vendor master",
				Fields: []string{"LIFNR", "NAME1", "LAND1"}},
		},
		TcodeMap: map[string]string{
			"ME51N": "Create Purchase Requisition",
			"ME54N": "Approve Purchase Requisition",
			"ME21N": "Create Purchase Order",
			"ME22N": "Change Purchase Order",
			"ME28":  "Approve Purchase Order",
			"MIGO":  "Goods Receipt",
			"MIRO":  "Invoice Receipt",
			"F110":  "Payment Run",
		},
		ReferenceActivities: []string{
			"Create Purchase Requisition", "Approve Purchase Requisition",
			"Create Purchase Order", "Approve Purchase Order",
			"Goods Receipt", "Invoice Receipt", "Payment Run",
		},
		KPIs: map[string]KPISpec{
			"po_to_gr": {Type: "transition", From: "Create Purchase Order", To: "Goods Receipt",
				Target: 7, Unit: "days", Description: "Purchase order to goods receipt"},
			"gr_to_ir": {Type: "transition", From: "Goods Receipt", To: "Invoice Receipt",
				Target: 3, Unit: "days", Description: "Goods receipt to invoice receipt"},
			"ir_to_payment": {Type: "transition", From: "Invoice Receipt", To: "Payment Run",
				Target: 30, Unit: "days", Description: "Invoice receipt to payment"},
			"po_change_ratio": {Type: "ratio", Numerator: "Change Purchase Order", Denominator: "Create Purchase Order",
				Target: 15, Description: "Share of purchase orders changed"},
		},
		S4HANA: S4Config{
			TableReplacements: map[string]string{},
			FieldMigrations:   nil,
		},
		Enrichment: []string{"vendor_category", "material_group"},
	},

	"R2R": {
		ID:          "R2R",
		Name:        "Record to Report",
		Description: "Financial postings from journal entry to period close",
		CaseID: CaseIDConfig{
			Primary: CaseIDRef{Table: "BKPF", Field: "BELNR"},
			Correlations: []CaseIDRef{
				{Table: "BSEG", Field: "BELNR"},
			},
		},
		Tables: map[string]TableConfig{
			"BKPF": {Type: TableRecord, Description: "Accounting document header",
				Fields: []string{"BELNR", "BUKRS", "GJAHR", "BLART", "BUDAT", "CPUDT", "CPUTM", "USNAM", "TCODE"}},
			"BSEG": {Type: TableDetail, Description: "Accounting document segment", ECCOnly: true,
				Fields: []string{"BELNR", "BUZEI", "HKONT", "WRBTR", "SHKZG"}},
			"BSIS": {Type: TableStatus, Description: "Open items, G/L accounts", ECCOnly: true,
				Fields: []string{"BELNR", "HKONT", "BUDAT"}},
			"CDHDR": {Type: TableChange, Description: "Change document header",
				Fields: []string{"OBJECTCLAS", "OBJECTID", "CHANGENR", "USERNAME", "UDATE", "UTIME", "TCODE"}},
			"SKA1": {Type: TableMaster, Description: "G/L account master",
				Fields: []string{"SAKNR", "KTOPL"}},
		},
		TcodeMap: map[string]string{
			"FB01":     "Create Journal Entry",
			"FB02":     "Change Journal Entry",
			"FB03":     "Display Journal Entry",
			"FBV0":     "Approve Journal Entry",
			"FB08":     "Reverse Journal Entry",
			"F.16":     "Balance Carryforward",
			"FAGLGVTR": "Period Close",
		},
		ReferenceActivities: []string{
			"Create Journal Entry", "Approve Journal Entry", "Period Close",
		},
		KPIs: map[string]KPISpec{
			"entry_to_approval": {Type: "transition", From: "Create Journal Entry", To: "Approve Journal Entry",
				Target: 1, Unit: "days", Description: "Journal entry approval latency"},
			"reversal_ratio": {Type: "ratio", Numerator: "Reverse Journal Entry", Denominator: "Create Journal Entry",
				Target: 2, Description: "Share of reversed postings"},
		},
		S4HANA: S4Config{
			TableReplacements: map[string]string{"BSEG": "ACDOCA", "BSIS": ""},
			FieldMigrations: []FieldMigration{
				{SourceTable: "BSEG", SourceField: "HKONT", TargetTable: "BKPF", TargetField: "HKONT"},
			},
		},
	},

	"A2R": {
		ID:          "A2R",
		Name:        "Acquire to Retire",
		Description: "Fixed asset lifecycle from acquisition to retirement",
		CaseID: CaseIDConfig{
			Primary: CaseIDRef{Table: "ANLA", Field: "ANLN1"},
			Correlations: []CaseIDRef{
				{Table: "ANEK", Field: "ANLN1"},
			},
		},
		Tables: map[string]TableConfig{
			"ANLA": {Type: TableRecord, Description: "Asset master record",
				Fields: []string{"ANLN1", "ANLN2", "BUKRS", "ERDAT", "ERNAM", "ANLKL", "TXT50"}},
			"ANEK": {Type: TableTransaction, Description: "Asset posting document header", ECCOnly: true,
				Fields: []string{"ANLN1", "BELNR", "BUDAT", "CPUDT", "USNAM", "TCODE"}},
			"ANLC": {Type: TableDetail, Description: "Asset value fields", ECCOnly: true,
				Fields: []string{"ANLN1", "GJAHR", "KANSW", "KNAFA"}},
			"CDHDR": {Type: TableChange, Description: "Change document header",
				Fields: []string{"OBJECTCLAS", "OBJECTID", "CHANGENR", "USERNAME", "UDATE", "UTIME", "TCODE"}},
		},
		TcodeMap: map[string]string{
			"AS01":  "Create Asset",
			"AS02":  "Change Asset",
			"ABZON": "Asset Acquisition",
			"AFAB":  "Depreciation Run",
			"ABAVN": "Asset Retirement",
			"ABUMN": "Asset Transfer",
		},
		ReferenceActivities: []string{
			"Create Asset", "Asset Acquisition", "Depreciation Run", "Asset Retirement",
		},
		KPIs: map[string]KPISpec{
			"create_to_acquisition": {Type: "transition", From: "Create Asset", To: "Asset Acquisition",
				Target: 5, Unit: "days", Description: "Asset shell to capitalization"},
			"transfer_ratio": {Type: "ratio", Numerator: "Asset Transfer", Denominator: "Create Asset",
				Target: 5, Description: "Share of transferred assets"},
		},
		S4HANA: S4Config{
			TableReplacements: map[string]string{"ANEK": "ACDOCA", "ANLC": "ACDOCA"},
			FieldMigrations: []FieldMigration{
				{SourceTable: "ANEK", SourceField: "BELNR", TargetTable: "ANLA", TargetField: "BELNR"},
			},
		},
	},

	"H2R": {
		ID:          "H2R",
		Name:        "Hire to Retire",
		Description: "Employee lifecycle from hiring to separation",
		CaseID: CaseIDConfig{
			Primary: CaseIDRef{Table: "PA0000", Field: "PERNR"},
			Correlations: []CaseIDRef{
				{Table: "PA0001", Field: "PERNR"},
			},
		},
		Tables: map[string]TableConfig{
			"PA0000": {Type: TableRecord, Description: "HR master record: actions",
				Fields: []string{"PERNR", "BEGDA", "ENDDA", "MASSN", "MASSG", "AEDTM", "UNAME"}},
			"PA0001": {Type: TableDetail, Description: "HR master record: org assignment",
				Fields: []string{"PERNR", "BEGDA", "ENDDA", "PLANS", "ORGEH", "PERSG"}},
			"PA0008": {Type: TableDetail, Description: "HR master record: basic pay",
				Fields: []string{"PERNR", "BEGDA", "ENDDA", "TRFGR", "ANSAL"}},
			"CDHDR": {Type: TableChange, Description: "Change document header",
				Fields: []string{"OBJECTCLAS", "OBJECTID", "CHANGENR", "USERNAME", "UDATE", "UTIME", "TCODE"}},
		},
		TcodeMap: map[string]string{
			"PA40":          "Personnel Action",
			"PA30":          "Maintain HR Master Data",
			"PA20":          "Display HR Master Data",
			"PT60":          "Time Evaluation",
			"PC00_M99_CALC": "Payroll Run",
		},
		ReferenceActivities: []string{
			"Personnel Action", "Maintain HR Master Data", "Payroll Run",
		},
		KPIs: map[string]KPISpec{
			"action_to_payroll": {Type: "transition", From: "Personnel Action", To: "Payroll Run",
				Target: 30, Unit: "days", Description: "Hire to first payroll"},
			"correction_ratio": {Type: "ratio", Numerator: "Maintain HR Master Data", Denominator: "Personnel Action",
				Target: 50, Description: "Master data touches per action"},
		},
		S4HANA: S4Config{
			TableReplacements: map[string]string{},
		},
	},

	"P2M": {
		ID:          "P2M",
		Name:        "Plan to Manufacture",
		Description: "Production from planned order to order confirmation",
		CaseID: CaseIDConfig{
			Primary: CaseIDRef{Table: "AFKO", Field: "AUFNR"},
			Correlations: []CaseIDRef{
				{Table: "AFVC", Field: "AUFPL"},
				{Table: "AFRU", Field: "AUFNR"},
			},
		},
		Tables: map[string]TableConfig{
			"AFKO": {Type: TableRecord, Description: "Production order header",
				Fields: []string{"AUFNR", "AUFPL", "GSTRP", "GLTRP", "GETRI", "DISPO", "PLNBEZ"}},
			"AFVC": {Type: TableDetail, Description: "Order operations",
				Fields: []string{"AUFPL", "APLZL", "VORNR", "ARBID", "LTXA1"}},
			"AFRU": {Type: TableTransaction, Description: "Order confirmations",
				Fields: []string{"AUFNR", "RUECK", "RMZHL", "ERSDA", "ERZET", "ERNAM", "LMNGA"}},
			"RESB": {Type: TableDetail, Description: "Reservation/dependent requirements",
				Fields: []string{"RSNUM", "RSPOS", "AUFNR", "MATNR", "BDMNG"}},
			"S022": {Type: TableStatus, Description: "Operation statistics (LIS)", ECCOnly: true,
				Fields: []string{"AUFNR", "VORNR", "SPTAG"}},
		},
		TcodeMap: map[string]string{
			"MD11":  "Create Planned Order",
			"CO01":  "Create Production Order",
			"CO02":  "Change Production Order",
			"CO05N": "Release Production Order",
			"MIGO":  "Goods Issue to Order",
			"CO11N": "Confirm Operation",
			"CO15":  "Confirm Order",
			"MB31":  "Goods Receipt from Order",
		},
		ReferenceActivities: []string{
			"Create Production Order", "Release Production Order",
			"Goods Issue to Order", "Confirm Order", "Goods Receipt from Order",
		},
		KPIs: map[string]KPISpec{
			"release_to_confirm": {Type: "transition", From: "Release Production Order", To: "Confirm Order",
				Target: 10, Unit: "days", Description: "Shop floor lead time"},
			"order_change_ratio": {Type: "ratio", Numerator: "Change Production Order", Denominator: "Create Production Order",
				Target: 20, Description: "Share of changed production orders"},
		},
		S4HANA: S4Config{
			TableReplacements: map[string]string{"S022": ""},
		},
	},

	"M2S": {
		ID:          "M2S",
		Name:        "Maintain to Settle",
		Description: "Plant maintenance from notification to settlement",
		CaseID: CaseIDConfig{
			Primary: CaseIDRef{Table: "QMEL", Field: "QMNUM"},
			Correlations: []CaseIDRef{
				{Table: "AUFK", Field: "AUFNR"},
			},
		},
		Tables: map[string]TableConfig{
			"QMEL": {Type: TableRecord, Description: "Maintenance notification",
				Fields: []string{"QMNUM", "QMART", "ERDAT", "ERZEIT", "ERNAM", "EQUNR", "QMTXT"}},
			"AUFK": {Type: TableTransaction, Description: "Order master data",
				Fields: []string{"AUFNR", "AUART", "ERDAT", "ERNAM", "KTEXT", "WERKS"}},
			"AFIH": {Type: TableDetail, Description: "Maintenance order header",
				Fields: []string{"AUFNR", "QMNUM", "EQUNR", "INGPR"}},
			"CDHDR": {Type: TableChange, Description: "Change document header",
				Fields: []string{"OBJECTCLAS", "OBJECTID", "CHANGENR", "USERNAME", "UDATE", "UTIME", "TCODE"}},
		},
		TcodeMap: map[string]string{
			"IW21": "Create Notification",
			"IW22": "Change Notification",
			"IW31": "Create Maintenance Order",
			"IW32": "Change Maintenance Order",
			"IW41": "Confirm Maintenance Order",
			"KO88": "Settle Order",
			"IW36": "Complete Notification",
		},
		ReferenceActivities: []string{
			"Create Notification", "Create Maintenance Order",
			"Confirm Maintenance Order", "Settle Order",
		},
		KPIs: map[string]KPISpec{
			"notification_to_order": {Type: "transition", From: "Create Notification", To: "Create Maintenance Order",
				Target: 2, Unit: "days", Description: "Notification triage latency"},
			"confirm_to_settle": {Type: "transition", From: "Confirm Maintenance Order", To: "Settle Order",
				Target: 7, Unit: "days", Description: "Confirmation to settlement"},
			"rework_ratio": {Type: "ratio", Numerator: "Change Maintenance Order", Denominator: "Create Maintenance Order",
				Target: 25, Description: "Share of changed maintenance orders"},
		},
		S4HANA: S4Config{
			TableReplacements: map[string]string{},
		},
	},
}
