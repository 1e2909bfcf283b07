package domain

type CatalogDomain string

const (
	DomainBooks CatalogDomain = "Books"
	DomainMovie CatalogDomain = "Movie"
)

// ValidDomains is the canonical set of accepted catalog domain strings.
var ValidDomains = map[string]bool{
	string(DomainBooks): true,
	string(DomainMovie): true,
}

type BackendRole string

const (
	RoleTeacher   BackendRole = "teacher"
	RoleStudent   BackendRole = "student"
	RoleFineTuned BackendRole = "fine_tuned"
)

// ValidRoles is the canonical set of accepted backend role strings.
var ValidRoles = map[string]bool{
	string(RoleTeacher):   true,
	string(RoleStudent):   true,
	string(RoleFineTuned): true,
}

func (r BackendRole) IsValid() bool { return ValidRoles[string(r)] }
