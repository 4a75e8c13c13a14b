package mipbench

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParamFlags collects repeated KEY=VALUE flags.
type ParamFlags map[string]string

func (p *ParamFlags) String() string {
	if p == nil || len(*p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(*p))
	for k := range *p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + (*p)[k]
	}
	return strings.Join(parts, ",")
}

func (p *ParamFlags) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return errors.Errorf("parameter %q is not KEY=VALUE", value)
	}
	if *p == nil {
		*p = make(ParamFlags)
	}
	(*p)[k] = strings.TrimSpace(v)
	return nil
}

type ArrayIntFlags []int

func (i *ArrayIntFlags) String() string {
	return fmt.Sprintf("%v", *i)
}

func (i *ArrayIntFlags) Set(value string) error {
	val, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	*i = append(*i, val)
	return nil
}

type ArrayFloatFlags []float64

func (i *ArrayFloatFlags) String() string {
	return fmt.Sprintf("%v", *i)
}

func (i *ArrayFloatFlags) Set(value string) error {
	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	*i = append(*i, val)
	return nil
}
