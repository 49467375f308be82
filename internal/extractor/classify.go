package extractor

import (
	"strings"

	"github.com/codeatlas-dev/codeatlas/internal/store"
)

// domainBuckets maps path segments to coarse architectural buckets.
// First matching segment wins, walking the path left to right.
var domainBuckets = map[string]string{
	"views":       "presentation",
	"ui":          "presentation",
	"templates":   "presentation",
	"frontend":    "presentation",
	"dashboard":   "presentation",
	"api":         "api",
	"routes":      "api",
	"controllers": "api",
	"handlers":    "api",
	"endpoints":   "api",
	"services":    "services",
	"core":        "services",
	"usecases":    "services",
	"analysis":    "services",
	"models":      "models",
	"entities":    "models",
	"schemas":     "models",
	"domain":      "models",
	"db":          "data",
	"database":    "data",
	"storage":     "data",
	"repository":  "data",
	"repositories": "data",
	"dao":         "data",
	"migrations":  "data",
	"utils":       "utilities",
	"helpers":     "utilities",
	"common":      "utilities",
	"lib":         "utilities",
	"tests":       "tests",
	"test":        "tests",
}

// DomainForPath infers an architectural bucket from a file's path segments.
func DomainForPath(path string) string {
	for _, segment := range strings.Split(path, "/") {
		if bucket, ok := domainBuckets[strings.ToLower(segment)]; ok {
			return bucket
		}
	}
	return "general"
}

// FileKindForPath classifies a file as a package marker, test, or module.
func FileKindForPath(path string) string {
	name := baseName(path)
	switch {
	case name == "__init__.py":
		return store.FileKindPackage
	case strings.HasPrefix(name, "test_"), strings.HasSuffix(name, "_test.py"):
		return store.FileKindTest
	default:
		return store.FileKindModule
	}
}

// classifyType derives the type-definition kind from base-type names and
// decorators. The base-name patterns are heuristic string matches; no type
// resolution happens here.
func classifyType(baseTypes, decorators []string) string {
	for _, base := range baseTypes {
		if strings.Contains(base, "Exception") || strings.Contains(base, "Error") {
			return store.TypeKindException
		}
	}
	for _, base := range baseTypes {
		if strings.Contains(base, "Enum") {
			return store.TypeKindEnum
		}
	}
	for _, dec := range decorators {
		if strings.Contains(dec, "dataclass") {
			return store.TypeKindDataclass
		}
	}
	for _, base := range baseTypes {
		if strings.Contains(base, "BaseModel") || strings.HasSuffix(base, "Model") {
			return store.TypeKindModel
		}
	}
	for _, base := range baseTypes {
		if base == "ABC" || base == "ABCMeta" || strings.Contains(base, "Abstract") {
			return store.TypeKindAbstract
		}
	}
	return store.TypeKindClass
}

// classifyCallable derives the callable kind from its context and decorators.
func classifyCallable(isMethod bool, decorators []string) string {
	for _, dec := range decorators {
		switch {
		case dec == "staticmethod":
			return store.CallableKindStaticMethod
		case dec == "classmethod":
			return store.CallableKindClassMethod
		case dec == "property" || strings.HasSuffix(dec, ".setter") || strings.HasSuffix(dec, ".getter"):
			return store.CallableKindProperty
		}
	}
	if isMethod {
		return store.CallableKindMethod
	}
	return store.CallableKindFunction
}
