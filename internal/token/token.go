package token

type Type string

type Token struct {
	Type    Type
	Literal string
	// Raw preserves the original lexeme when Literal is normalized (e.g., strings).
	Raw  string
	Line int
	Col  int
}

const (
	// Special
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	// Layout (blocks are indentation-delimited)
	NEWLINE Type = "NEWLINE"
	INDENT  Type = "INDENT"
	DEDENT  Type = "DEDENT"

	// Identifiers + literals
	IDENT   Type = "IDENT"
	INT     Type = "INT"
	FLOAT   Type = "FLOAT"
	STRING  Type = "STRING"
	FSTRING Type = "FSTRING"

	// Keywords
	DEF    Type = "DEF"
	RETURN Type = "RETURN"
	IF     Type = "IF"
	ELIF   Type = "ELIF"
	ELSE   Type = "ELSE"
	WHILE  Type = "WHILE"
	FOR    Type = "FOR"
	IN     Type = "IN"
	IS     Type = "IS"
	CLASS  Type = "CLASS"
	PASS   Type = "PASS"
	TRUE   Type = "TRUE"
	FALSE  Type = "FALSE"
	NONE   Type = "NONE"
	AND    Type = "AND"
	OR     Type = "OR"
	NOT    Type = "NOT"

	// Operators
	ASSIGN   Type = "="
	PLUS     Type = "+"
	MINUS    Type = "-"
	STAR     Type = "*"
	SLASH    Type = "/"
	DSLASH   Type = "//"
	PERCENT  Type = "%"
	DSTAR    Type = "**"
	PLUSEQ   Type = "+="
	MINUSEQ  Type = "-="
	STAREQ   Type = "*="
	SLASHEQ  Type = "/="
	DSLASHEQ Type = "//="
	PCTEQ    Type = "%="
	DSTAREQ  Type = "**="

	EQ Type = "=="
	NE Type = "!="
	LT Type = "<"
	LE Type = "<="
	GT Type = ">"
	GE Type = ">="

	// Delimiters
	COMMA    Type = ","
	COLON    Type = ":"
	DOT      Type = "."
	LPAREN   Type = "("
	RPAREN   Type = ")"
	LBRACKET Type = "["
	RBRACKET Type = "]"
	LBRACE   Type = "{"
	RBRACE   Type = "}"
)

var keywords = map[string]Type{
	"def":    DEF,
	"return": RETURN,
	"if":     IF,
	"elif":   ELIF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"in":     IN,
	"is":     IS,
	"class":  CLASS,
	"pass":   PASS,
	"True":   TRUE,
	"False":  FALSE,
	"None":   NONE,
	"and":    AND,
	"or":     OR,
	"not":    NOT,
}

func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// AugAssignOps maps augmented assignment tokens to their base operator.
var AugAssignOps = map[Type]Type{
	PLUSEQ:   PLUS,
	MINUSEQ:  MINUS,
	STAREQ:   STAR,
	SLASHEQ:  SLASH,
	DSLASHEQ: DSLASH,
	PCTEQ:    PERCENT,
	DSTAREQ:  DSTAR,
}
