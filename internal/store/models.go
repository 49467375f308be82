package store

// Domain models that mirror SQL tables in schema.go.
// These are lightweight data transfer structs, NOT ORM models.

// EntityKind identifies which entity table an id refers to.
type EntityKind string

const (
	EntityFile     EntityKind = "file"
	EntityType     EntityKind = "type"
	EntityCallable EntityKind = "callable"
)

// RelationshipKind is the semantic flavor of an edge between entities.
type RelationshipKind string

const (
	RelInherits  RelationshipKind = "inherits"
	RelCalls     RelationshipKind = "calls"
	RelImports   RelationshipKind = "imports"
	RelUses      RelationshipKind = "uses"
	RelContains  RelationshipKind = "contains"
	RelDependsOn RelationshipKind = "depends_on"
)

// File kind values.
const (
	FileKindModule  = "module"
	FileKindPackage = "package"
	FileKindTest    = "test"
)

// Type definition kind values.
const (
	TypeKindClass     = "class"
	TypeKindAbstract  = "abstract"
	TypeKindException = "exception"
	TypeKindEnum      = "enum"
	TypeKindDataclass = "dataclass"
	TypeKindModel     = "model"
)

// Callable kind values.
const (
	CallableKindFunction    = "function"
	CallableKindMethod      = "method"
	CallableKindStaticMethod = "static_method"
	CallableKindClassMethod = "class_method"
	CallableKindProperty    = "property"
)

// Complexity level values, ordered low to very high.
const (
	LevelLow      = "low"
	LevelMedium   = "medium"
	LevelHigh     = "high"
	LevelVeryHigh = "very_high"
)

// SourceFile represents one analyzed file.
// Maps to the files table.
type SourceFile struct {
	ID              int64  // file_id
	Path            string // path: relative path, stable key
	Name            string // name: base name
	Domain          string // domain: architectural bucket from path segments
	Kind            string // kind: module, package, test
	LineCount       int    // line_count
	ComplexityScore int    // complexity_score: raw file score
	ComplexityLevel string // complexity_level: derived ordinal
	TypeCount       int    // type_count: denormalized
	CallableCount   int    // callable_count: denormalized
	ImportCount     int    // import_count
}

// TypeDefinition represents a class-like definition owned by a file.
// Maps to the type_definitions table.
type TypeDefinition struct {
	ID          int64    // type_id
	FileID      int64    // file_id: owning file
	Name        string   // name
	StartLine   int      // start_line
	EndLine     int      // end_line
	Kind        string   // kind: class, abstract, exception, enum, dataclass, model
	BaseTypes   []string // base_types: raw base-type names, resolved lazily
	Decorators  []string // decorators
	MethodCount int      // method_count: denormalized
	IsAbstract  bool     // is_abstract
}

// CallableUnit represents a function, method, or property.
// Maps to the callable_units table.
//
// Invariant: when TypeID is non-nil, the referenced type definition must
// belong to the same file as the callable. InsertCallable enforces this.
type CallableUnit struct {
	ID          int64    // callable_id
	FileID      int64    // file_id: owning file
	TypeID      *int64   // type_id: owning type, nil for free functions
	Name        string   // name
	StartLine   int      // start_line
	EndLine     int      // end_line
	Kind        string   // kind: function, method, static_method, class_method, property
	Parameters  []string // parameters: flattened name[:annotation][=default] strings
	ReturnType  *string  // return_type: nil when unannotated
	Decorators  []string // decorators
	IsAsync     bool     // is_async
	IsGenerator bool     // is_generator
	Complexity  int      // complexity: simplified cyclomatic score
}

// Relationship is a resolved id-to-id edge between two entities.
// Maps to the relationships table. Unresolved stubs never reach storage.
type Relationship struct {
	ID         int64            // relationship_id
	SourceKind EntityKind       // source_kind
	SourceID   int64            // source_id
	SourceName string           // source_name
	TargetKind EntityKind       // target_kind
	TargetID   int64            // target_id
	TargetName string           // target_name
	Kind       RelationshipKind // kind
	FilePath   string           // file_path: where the relationship is declared
	Line       int              // line
}

// EntityRef addresses one row across the type/callable tables.
// Used by the graph builder to map entity ids to owning files.
type EntityRef struct {
	Kind EntityKind
	ID   int64
}
