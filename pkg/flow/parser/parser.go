package parser

import (
	"fmt"
	"os"

	"mercator-hq/flowc/pkg/flow/ast"
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/parsec"
	"mercator-hq/flowc/pkg/flow/source"
)

// DefaultMaxFileSize is the default limit for a single source file.
const DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB

// Parser parses flow source files into Abstract Syntax Trees.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: DefaultMaxFileSize,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	if size > 0 {
		p.maxFileSize = size
	}
	return p
}

// Parse parses the file at path. It returns a *errors.SystemError if the file
// cannot be read or is too large, and a *errors.ParserError for syntax errors.
func (p *Parser) Parse(path string) (*ast.Graph, error) {
	src, err := p.Load(path)
	if err != nil {
		return nil, err
	}
	return p.ParseSource(src)
}

// Load reads the file at path into a Source, enforcing the size limit.
func (p *Parser) Load(path string) (*source.Source, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewSystemError(path, source.Span{}, err)
	}
	if fileInfo.Size() > p.maxFileSize {
		return nil, errors.NewSystemError(path, source.Span{},
			fmt.Errorf("file size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewSystemError(path, source.Span{}, err)
	}
	return source.New(path, string(data)), nil
}

// ParseBytes parses source text from a byte slice.
// This is useful for testing or parsing snippets from memory.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Graph, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, errors.NewSystemError(sourcePath, source.Span{},
			fmt.Errorf("data size %d exceeds maximum %d bytes", len(data), p.maxFileSize))
	}
	return p.ParseSource(source.New(sourcePath, string(data)))
}

// ParseSource parses a whole program.
func (p *Parser) ParseSource(src *source.Source) (*ast.Graph, error) {
	g, perr := parsec.Run(newGrammar().program, src)
	if perr != nil {
		return nil, perr
	}
	return g, nil
}

// ParseExpression parses a single expression, such as a REPL input.
func (p *Parser) ParseExpression(src *source.Source) (ast.Expr, error) {
	g := newGrammar()
	e, perr := parsec.Run(parsec.Skip(g.expr, token(parsec.EOF())), src)
	if perr != nil {
		return nil, perr
	}
	return e, nil
}
