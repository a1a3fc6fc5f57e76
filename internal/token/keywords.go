package token

// Keywords is the closed set of reserved identifiers for the accepted C
// subset: roughly C99 plus the GCC-style spellings (__attribute__,
// __asm__, __inline__ and friends) needed to parse inline asm,
// attributes and variable argument lists in headers that use them.
var Keywords = map[string]bool{
	// storage class specifiers
	"auto": true, "extern": true, "register": true, "static": true, "typedef": true,

	// type specifiers
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true, "_Complex": true,
	"struct": true, "union": true, "enum": true,

	// type qualifiers
	"const": true, "restrict": true, "volatile": true, "_Atomic": true,

	// function specifiers
	"inline": true, "_Noreturn": true,

	// statements
	"if": true, "else": true, "switch": true, "case": true, "default": true,
	"while": true, "do": true, "for": true, "goto": true, "continue": true,
	"break": true, "return": true,

	// expressions
	"sizeof": true,

	// GCC extensions
	"__attribute__": true, "__asm__": true, "asm": true,
	"__inline__": true, "__inline": true, "__const__": true,
	"__restrict__": true, "__restrict": true, "__volatile__": true,
	"__signed__": true, "__typeof__": true, "typeof": true,
	"__builtin_va_list": true,
	"__va_arg": true, "__va_start": true, "__va_end": true, "__va_copy": true,
	"__extension__": true,
}

// IsKeyword reports whether ident names a reserved word rather than a
// user identifier.
func IsKeyword(ident string) bool {
	return Keywords[ident]
}

// multiCharPunct lists multi-character operators/punctuators, longest
// first so the lexer's greedy match picks the right one (e.g. "<<="
// before "<<" before "<").
var multiCharPunct = []string{
	"...",
	"<<=", ">>=",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=",
	"&&", "||", "*=", "/=", "%=", "+=", "-=", "&=", "^=", "|=",
	"##",
}

// MultiCharPunctuators returns the ordered list used by the lexer's
// greedy punctuator match.
func MultiCharPunctuators() []string {
	return multiCharPunct
}

// singleCharPunct is every one-character punctuator/operator.
var singleCharPunct = map[byte]bool{
	'+': true, '-': true, '*': true, '/': true, '%': true,
	'&': true, '|': true, '^': true, '~': true, '!': true,
	'<': true, '>': true, '=': true, '?': true, ':': true,
	'(': true, ')': true, '[': true, ']': true, '{': true, '}': true,
	';': true, ',': true, '.': true, '#': true,
}

// IsSingleCharPunct reports whether b alone forms a punctuator.
func IsSingleCharPunct(b byte) bool {
	return singleCharPunct[b]
}
