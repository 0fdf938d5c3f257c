package arcgis

import "cadastral-export/internal/models"

// Per-state upstream map services and attribute-name mappings. Each
// state's server spells its columns differently; this is configuration,
// not logic, and is read-only after init.

var serviceURLs = map[models.State]string{
	models.NSW: "https://portal.spatial.nsw.gov.au/server/rest/services/NSW_Land_Parcel_Property_Theme/MapServer/8",
	models.QLD: "https://spatial-gis.information.qld.gov.au/arcgis/rest/services/PlanningCadastre/LandParcelPropertyFramework/MapServer/4",
	models.SA:  "https://lsa2.geohub.sa.gov.au/server/rest/services/ePlanning/DAP_Parcels/MapServer/1",
	models.VIC: "https://enterprise.mapshare.vic.gov.au/server/rest/services/Vicmap_Parcel/MapServer/0",
}

type fieldMapping struct {
	IDField      string
	NameField    string
	LotField     string
	SectionField string
	PlanField    string
}

var fieldMappings = map[models.State]fieldMapping{
	models.NSW: {
		IDField:      "lotidstring",
		NameField:    "planlabel",
		LotField:     "lotnumber",
		SectionField: "sectionnumber",
		PlanField:    "plannumber",
	},
	models.QLD: {
		IDField:   "lotplan",
		NameField: "addr_legal",
		LotField:  "lot",
		PlanField: "plan",
	},
	models.SA: {
		IDField:   "parcel_id",
		NameField: "legal_desc",
		LotField:  "lot_number",
		PlanField: "plan_number",
	},
	models.VIC: {
		IDField:   "spi",
		NameField: "parcel_desc",
		LotField:  "lot_number",
		PlanField: "plan_number",
	},
}

// SA stores its three identifier schemes in three separate columns, so
// one WHERE ... IN clause cannot span schemes.
const (
	saTitleField  = "title_ref"
	saParcelField = "parcel_id"
	saDCDBField   = "dcdb_id"
)

// Columns matched by the NSW free-text search.
var nswSearchFields = []string{"lotidstring", "planlabel"}
