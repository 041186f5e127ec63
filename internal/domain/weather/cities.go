package weather

import "strings"

type builtinCity struct {
	City
	keywords []string
}

// commonCities answers searches when the geo API is unavailable.
var commonCities = []builtinCity{
	{City{Name: "北京", ID: "101010100", Adm1: "北京市"}, []string{"beijing", "北京", "bj"}},
	{City{Name: "上海", ID: "101020100", Adm1: "上海市"}, []string{"shanghai", "上海", "sh"}},
	{City{Name: "广州", ID: "101280101", Adm1: "广东省"}, []string{"guangzhou", "广州", "gz"}},
	{City{Name: "深圳", ID: "101280601", Adm1: "广东省"}, []string{"shenzhen", "深圳", "sz"}},
	{City{Name: "杭州", ID: "101210101", Adm1: "浙江省"}, []string{"hangzhou", "杭州", "hz"}},
	{City{Name: "成都", ID: "101270101", Adm1: "四川省"}, []string{"chengdu", "成都", "cd"}},
	{City{Name: "重庆", ID: "101040100", Adm1: "重庆市"}, []string{"chongqing", "重庆", "cq"}},
	{City{Name: "武汉", ID: "101200101", Adm1: "湖北省"}, []string{"wuhan", "武汉", "wh"}},
	{City{Name: "西安", ID: "101110101", Adm1: "陕西省"}, []string{"xian", "西安", "xa"}},
	{City{Name: "南京", ID: "101190101", Adm1: "江苏省"}, []string{"nanjing", "南京", "nj"}},
	{City{Name: "天津", ID: "101030100", Adm1: "天津市"}, []string{"tianjin", "天津", "tj"}},
	{City{Name: "苏州", ID: "101190401", Adm1: "江苏省"}, []string{"suzhou", "苏州", "su"}},
	{City{Name: "长沙", ID: "101250101", Adm1: "湖南省"}, []string{"changsha", "长沙", "cs"}},
	{City{Name: "郑州", ID: "101180101", Adm1: "河南省"}, []string{"zhengzhou", "郑州", "zz"}},
	{City{Name: "济南", ID: "101120101", Adm1: "山东省"}, []string{"jinan", "济南", "jn"}},
	{City{Name: "青岛", ID: "101120201", Adm1: "山东省"}, []string{"qingdao", "青岛", "qd"}},
	{City{Name: "厦门", ID: "101230201", Adm1: "福建省"}, []string{"xiamen", "厦门", "xm"}},
	{City{Name: "大连", ID: "101070201", Adm1: "辽宁省"}, []string{"dalian", "大连", "dl"}},
	{City{Name: "沈阳", ID: "101070101", Adm1: "辽宁省"}, []string{"shenyang", "沈阳", "sy"}},
	{City{Name: "哈尔滨", ID: "101050101", Adm1: "黑龙江"}, []string{"haerbin", "哈尔滨", "heb"}},
}

func searchBuiltin(query string, limit int) []City {
	query = strings.ToLower(query)
	out := make([]City, 0, limit)
	for _, entry := range commonCities {
		if len(out) == limit {
			break
		}
		for _, kw := range entry.keywords {
			if strings.Contains(kw, query) {
				city := entry.City
				city.Adm2 = city.Adm1
				city.Country = "中国"
				city.Lat, city.Lon = "0", "0"
				out = append(out, city)
				break
			}
		}
	}
	return out
}
