package configuration

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	flag "github.com/spf13/pflag"
)

// BoundParameter stores the pointer and the type of values that were bound using BindParameters.
type BoundParameter struct {
	Name         string
	ShortHand    string
	Usage        string
	BoundPointer any
	BoundType    reflect.Type
}

// BindParameters defines a flag for every field of the struct pointerToStruct points to.
//
// Flag names are namespace + "." + the name of the field. The name tag overrides the name, otherwise
// the koanf tag or the lower camel case field name is used. The current value of a field is its
// default unless the field is zero and a default tag is given. Nested structs become nested names.
// Supported field types are string, bool, int, uint8 and []string.
func (c *Configuration) BindParameters(flagset *flag.FlagSet, namespace string, pointerToStruct any) {
	val := reflect.ValueOf(pointerToStruct).Elem()
	for i := 0; i < val.NumField(); i++ {
		valueField := val.Field(i)
		typeField := val.Type().Field(i)

		name := namespace + "." + parameterName(typeField)
		shortHand := typeField.Tag.Get("shorthand")
		usage := typeField.Tag.Get("usage")
		tagDefault, hasTagDefault := typeField.Tag.Lookup("default")
		useTagDefault := hasTagDefault && valueField.IsZero()

		//nolint:forcetypeassert // the pointer types follow from the type switch
		switch defaultValue := valueField.Interface().(type) {
		case string:
			if useTagDefault {
				defaultValue = tagDefault
			}
			flagset.StringVarP(valueField.Addr().Interface().(*string), name, shortHand, defaultValue, usage)

		case bool:
			if useTagDefault {
				defaultValue = mustParse(name, tagDefault, strconv.ParseBool)
			}
			flagset.BoolVarP(valueField.Addr().Interface().(*bool), name, shortHand, defaultValue, usage)

		case int:
			if useTagDefault {
				defaultValue = mustParse(name, tagDefault, strconv.Atoi)
			}
			flagset.IntVarP(valueField.Addr().Interface().(*int), name, shortHand, defaultValue, usage)

		case uint8:
			if useTagDefault {
				defaultValue = uint8(mustParse(name, tagDefault, func(s string) (uint64, error) {
					return strconv.ParseUint(s, 10, 8)
				}))
			}
			flagset.Uint8VarP(valueField.Addr().Interface().(*uint8), name, shortHand, defaultValue, usage)

		case []string:
			if useTagDefault && tagDefault != "" {
				defaultValue = strings.Split(tagDefault, ",")
			}
			flagset.StringSliceVarP(valueField.Addr().Interface().(*[]string), name, shortHand, defaultValue, usage)

		default:
			if valueField.Kind() != reflect.Struct {
				panic(fmt.Sprintf("could not bind '%s' of unsupported type %s", name, valueField.Type()))
			}

			c.BindParameters(flagset, name, valueField.Addr().Interface())

			continue
		}

		c.boundParameters[strings.ToLower(name)] = &BoundParameter{
			Name:         name,
			ShortHand:    shortHand,
			Usage:        usage,
			BoundPointer: valueField.Addr().Interface(),
			BoundType:    valueField.Type(),
		}
	}
}

// UpdateBoundParameters sets the parameters bound with BindParameters to the current values of the configuration.
func (c *Configuration) UpdateBoundParameters() error {
	for key, parameter := range c.boundParameters {
		if !c.config.Exists(key) {
			continue
		}

		value := reflect.New(parameter.BoundType)
		if err := c.UnmarshalKey(key, value.Interface()); err != nil {
			return err
		}
		reflect.ValueOf(parameter.BoundPointer).Elem().Set(value.Elem())
	}

	return nil
}

// BoundParameters returns the parameters bound with BindParameters, keyed by their lower cased name.
func (c *Configuration) BoundParameters() map[string]*BoundParameter {
	return c.boundParameters
}

func parameterName(field reflect.StructField) string {
	if name, exists := field.Tag.Lookup("name"); exists {
		return name
	}
	if name, exists := field.Tag.Lookup("koanf"); exists && name != "" && name != "-" {
		return name
	}

	return LowerCamelCase(field.Name)
}

// LowerCamelCase lower cases the leading upper case letters of s, keeping the last one of
// an acronym that is followed by a lower case letter.
func LowerCamelCase(s string) string {
	runes := []rune(s)
	for i := range runes {
		if !unicode.IsUpper(runes[i]) {
			break
		}
		if i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			break
		}
		runes[i] = unicode.ToLower(runes[i])
	}

	return string(runes)
}

func mustParse[T any](name string, value string, parse func(string) (T, error)) T {
	result, err := parse(value)
	if err != nil {
		panic(fmt.Sprintf("could not parse default value of '%s', error: %s", name, err))
	}

	return result
}
