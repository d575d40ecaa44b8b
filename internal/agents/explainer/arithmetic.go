package explainer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// extraction patterns for common arithmetic question phrasings.
var expressionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`what\s+is\s+([\d\s+\-*/().×÷]+)`),
	regexp.MustCompile(`calculate\s+([\d\s+\-*/().×÷]+)`),
	regexp.MustCompile(`compute\s+([\d\s+\-*/().×÷]+)`),
	regexp.MustCompile(`solve\s+([\d\s+\-*/().×÷]+)`),
	regexp.MustCompile(`^([\d\s+\-*/().×÷]+)$`),
}

var safeExpressionRe = regexp.MustCompile(`^[\d+\-*/().]+$`)

// EvaluateArithmetic extracts a mathematical expression from the query and
// evaluates it. Failures come back as user-facing answers, never as errors,
// since a bad expression is a conversation problem rather than a server one.
func EvaluateArithmetic(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.TrimSuffix(q, "?")

	var expression string
	for _, pattern := range expressionPatterns {
		if match := pattern.FindStringSubmatch(q); match != nil {
			expression = strings.TrimSpace(match[1])
			break
		}
	}
	if expression == "" {
		return "I couldn't find a mathematical expression in your query."
	}

	expression = strings.NewReplacer(" ", "", "\t", "", "×", "*", "÷", "/").Replace(expression)
	if !safeExpressionRe.MatchString(expression) {
		return "The expression contains invalid characters."
	}

	result, err := evalExpression(expression)
	if err != nil {
		if err == errDivisionByZero {
			return "Error: Division by zero is not allowed."
		}
		return fmt.Sprintf("Error: Could not evaluate the expression '%s'. Please check your math syntax.", expression)
	}

	if result == float64(int64(result)) {
		return fmt.Sprintf("The answer is %d", int64(result))
	}
	return fmt.Sprintf("The answer is %s", strconv.FormatFloat(result, 'g', 6, 64))
}

var errDivisionByZero = fmt.Errorf("division by zero")

// exprParser is a recursive descent parser over the usual precedence:
// expr := term (('+'|'-') term)*, term := factor (('*'|'/') factor)*,
// factor := number | '(' expr ')' | ('-'|'+') factor.
type exprParser struct {
	input string
	pos   int
}

func evalExpression(expression string) (float64, error) {
	p := &exprParser{input: expression}
	result, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("unexpected character at position %d", p.pos)
	}
	return result, nil
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for p.pos < len(p.input) {
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			break
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for p.pos < len(p.input) {
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			break
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, errDivisionByZero
			}
			left /= right
		}
	}
	return left, nil
}

func (p *exprParser) parseFactor() (float64, error) {
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	switch p.input[p.pos] {
	case '-':
		p.pos++
		value, err := p.parseFactor()
		return -value, err
	case '+':
		p.pos++
		return p.parseFactor()
	case '(':
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return value, nil
	}

	start := p.pos
	for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("expected number at position %d", start)
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return value, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
