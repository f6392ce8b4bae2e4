// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package validator

import (
	"errors"
	"net"
	"reflect"

	"github.com/asaskevich/govalidator"
)

type Ipv4List []string

func init() {
	govalidator.TagMap["cidr"] = govalidator.IsCIDR
	govalidator.TagMap["listen_addr"] = isListenAddr
	govalidator.TagMap["path"] = govalidator.IsUnixFilePath

	govalidator.CustomTypeTagMap.Set("ipv4list", isIPv4List)
}

func ValidateStruct(s interface{}) error {
	ok, err := govalidator.ValidateStruct(s)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("validation failed")
	}
	return nil
}

func isListenAddr(s string) bool {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return false
	}
	if !govalidator.IsPort(port) {
		return false
	}
	// dual-stack listener
	if len(host) == 0 {
		return true
	}

	return govalidator.IsHost(host) || govalidator.IsIP(host)
}

func isIPv4List(i interface{}, _ interface{}) bool {
	v := reflect.ValueOf(i)
	if v.Kind() != reflect.Slice {
		return false
	}

	for idx := 0; idx < v.Len(); idx++ {
		s, ok := v.Index(idx).Interface().(string)
		if !ok || !govalidator.IsIPv4(s) {
			return false
		}
	}
	return true
}
