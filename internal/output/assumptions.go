package output

// DefaultAssumptions lists key modeling assumptions rendered in detailed outputs.
var DefaultAssumptions = []string{
	"Sale prices and rents are entered GST-inclusive; GST is remitted in the month collected",
	"GST input credits are received one month after the cost unless a lag is configured",
	"Interest accrues monthly at the annual rate / 12 on the opening balance",
	"Stamp duty and land tax use the jurisdiction table, or the fallback rate when none exists",
	"Surplus cash earns the surplus rate and is released to equity in the final month",
	"Escalation compounds monthly from month 0 at the monthly equivalent of the annual rate",
}
