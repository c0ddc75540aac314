package domain

// PackageVerdict is the package policy decision for one install candidate.
type PackageVerdict struct {
	Allowed bool
	Reason  string
	Rule    string
}
