package geo

import (
	"net"

	"go-snortalert/pkg/logger"

	"github.com/oschwald/geoip2-golang"
)

// Location 源IP的地理与ASN信息，查询不到的字段为空
type Location struct {
	Country string
	ASN     uint
	ASOrg   string
}

// Locator 查询IP的地理位置
type Locator interface {
	Lookup(ip string) Location
	Close() error
}

// NopLocator 未配置GeoIP数据库时使用
type NopLocator struct{}

func (NopLocator) Lookup(string) Location { return Location{} }
func (NopLocator) Close() error           { return nil }

// GeoIPLocator 基于 MaxMind City/ASN 数据库的查询器
type GeoIPLocator struct {
	city *geoip2.Reader
	asn  *geoip2.Reader
}

// Open 打开GeoIP数据库，路径为空的数据库跳过；两个路径都为空时返回 NopLocator
func Open(cityPath, asnPath string) (Locator, error) {
	if cityPath == "" && asnPath == "" {
		return NopLocator{}, nil
	}

	l := &GeoIPLocator{}
	if cityPath != "" {
		db, err := geoip2.Open(cityPath)
		if err != nil {
			return nil, err
		}
		l.city = db
	}
	if asnPath != "" {
		db, err := geoip2.Open(asnPath)
		if err != nil {
			l.Close()
			return nil, err
		}
		l.asn = db
	}
	return l, nil
}

func (l *GeoIPLocator) Lookup(ipStr string) Location {
	var loc Location

	ip := net.ParseIP(ipStr)
	if ip == nil || ip.IsUnspecified() || ip.IsPrivate() || ip.IsLoopback() {
		return loc
	}

	if l.city != nil {
		city, err := l.city.City(ip)
		if err != nil {
			logger.Log.Errorf("GeoIP查询失败: ip=%s, %v", ipStr, err)
		} else {
			loc.Country = city.Country.IsoCode
		}
	}

	if l.asn != nil {
		asn, err := l.asn.ASN(ip)
		if err != nil {
			logger.Log.Errorf("ASN查询失败: ip=%s, %v", ipStr, err)
		} else {
			loc.ASN = asn.AutonomousSystemNumber
			loc.ASOrg = asn.AutonomousSystemOrganization
		}
	}
	return loc
}

func (l *GeoIPLocator) Close() error {
	var firstErr error
	if l.city != nil {
		if err := l.city.Close(); err != nil {
			firstErr = err
		}
	}
	if l.asn != nil {
		if err := l.asn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
