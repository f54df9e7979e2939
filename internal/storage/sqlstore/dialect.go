package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect SQL方言
type Dialect int

const (
	// Postgres 使用 $n 占位符和 TIMESTAMPTZ
	Postgres Dialect = iota
	// SQLite 使用 ? 占位符和毫秒时间戳
	SQLite
)

// ParseDialect 按驱动名解析方言
func ParseDialect(driver string) (Dialect, error) {
	switch driver {
	case "postgres":
		return Postgres, nil
	case "sqlite":
		return SQLite, nil
	default:
		return 0, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// rebind 将 ? 占位符替换为方言占位符
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timeArg 将时间转换为方言对应的参数值
func (d Dialect) timeArg(t time.Time) any {
	if d == SQLite {
		return t.UTC().UnixMilli()
	}
	return t.UTC()
}

// dbTime 兼容 TIMESTAMPTZ 与毫秒时间戳两种列
type dbTime struct {
	t *time.Time
}

func (d dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d.t = v.UTC()
	case int64:
		*d.t = time.UnixMilli(v).UTC()
	case nil:
		*d.t = time.Time{}
	default:
		return fmt.Errorf("unsupported time column type %T", src)
	}
	return nil
}
