package validation

// Fields 是用户填写的四个字段，原样保存，不做 trim 或截断
type Fields struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

func (f Fields) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldSubject:
		return f.Subject
	case FieldMessage:
		return f.Message
	default:
		return ""
	}
}

// Set 写入字段值，未知字段返回 false
func (f *Fields) Set(field Field, value string) bool {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldSubject:
		f.Subject = value
	case FieldMessage:
		f.Message = value
	default:
		return false
	}
	return true
}

// FieldErrors 字段 -> 错误文案，每个字段最多一条
type FieldErrors map[Field]string

// First 按表单顺序返回第一个出错的字段
func (e FieldErrors) First() (Field, bool) {
	for _, field := range Order {
		if _, ok := e[field]; ok {
			return field, true
		}
	}
	return "", false
}

func (e FieldErrors) Clone() FieldErrors {
	if e == nil {
		return nil
	}
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
