// Package validation holds the contact form constraints. The same rules run in
// the form controller and in the submission service, so both layers always
// agree on what a valid submission is.
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field 表单字段名，同时也是 JSON 中的 key
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldSubject Field = "subject"
	FieldMessage Field = "message"
)

// Order 是字段在表单中的顺序，用于定位第一个出错的字段
var Order = []Field{FieldName, FieldEmail, FieldSubject, FieldMessage}

// Known 判断字段是否属于联系表单
func Known(field Field) bool {
	_, ok := rules[field]
	return ok
}

type rule struct {
	tag     string
	message string
}

// 长度规则按 code point 计数，"李四" 是 2 个字符，一个 emoji 是 1 个。
// 每个字段按声明顺序检查，第一条失败的规则决定错误文案
var rules = map[Field][]rule{
	FieldName: {
		{tag: "min=2", message: "Name must be at least 2 characters"},
		{tag: "max=50", message: "Name must be less than 50 characters"},
	},
	FieldEmail: {
		{tag: "contact_email", message: "Please enter a valid email address"},
		{tag: "min=5", message: "Email must be at least 5 characters"},
	},
	FieldSubject: {
		{tag: "min=5", message: "Subject must be at least 5 characters"},
		{tag: "max=200", message: "Subject must be less than 200 characters"},
	},
	FieldMessage: {
		{tag: "min=10", message: "Message must be at least 10 characters"},
		{tag: "max=1000", message: "Message must be less than 1000 characters"},
	},
}

// validator.Validate 缓存 tag 解析结果，并发安全
var validate = newValidator()

// emailPattern 只允许 ASCII 的 local part 和至少两位字母的顶级域名。
// RE2 不支持 lookahead，开头的点和连续的点在 validContactEmail 里单独检查。
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_'+\-.]*[A-Za-z0-9_+\-]@([A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`)

func validContactEmail(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if strings.HasPrefix(v, ".") || strings.Contains(v, "..") {
		return false
	}
	return emailPattern.MatchString(v)
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("contact_email", validContactEmail); err != nil {
		panic(err)
	}
	return v
}

// ValidateField 只校验单个字段。未知字段没有规则，视为通过。
// min/max 按 Unicode code point 计数，不是 UTF-16 单元。
func ValidateField(field Field, value string) (string, bool) {
	for _, r := range rules[field] {
		if err := validate.Var(value, r.tag); err != nil {
			return r.message, false
		}
	}
	return "", true
}

// Validate 校验全部字段，收集所有出错字段的错误
func Validate(fields Fields) Result {
	var errs FieldErrors
	for _, field := range Order {
		if msg, ok := ValidateField(field, fields.Get(field)); !ok {
			if errs == nil {
				errs = make(FieldErrors, len(Order))
			}
			errs[field] = msg
		}
	}

	return Result{Fields: fields, Errors: errs}
}

// Result 是 Validate 的结果：Errors 为空即 Valid(Fields)，否则为 Invalid(Errors)
type Result struct {
	Fields Fields
	Errors FieldErrors
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}
