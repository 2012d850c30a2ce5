package search

// defaultPlaceCodes maps well-known place names to their romanized initials.
// Lookup is on the whole cleaned string, so only exact place names expand.
var defaultPlaceCodes = map[string]string{
	// mainland China
	"北京": "bj", "上海": "sh", "广州": "gz", "深圳": "sz", "杭州": "hz",
	"南京": "nj", "成都": "cd", "武汉": "wh", "西安": "xa", "重庆": "cq",
	"天津": "tj", "苏州": "sz", "厦门": "xm", "长沙": "cs", "青岛": "qd",
	"大连": "dl", "宁波": "nb", "无锡": "wx", "佛山": "fs", "东莞": "dg",
	"郑州": "zz", "济南": "jn", "福州": "fz", "合肥": "hf", "昆明": "km",
	"哈尔滨": "heb", "沈阳": "sy", "长春": "cc", "石家庄": "sjz", "太原": "ty",
	"南昌": "nc", "南宁": "nn", "贵阳": "gy", "兰州": "lz", "银川": "yc",
	"西宁": "xn", "乌鲁木齐": "wlmq", "拉萨": "ls", "海口": "hk", "三亚": "sy",
	"呼和浩特": "hhht", "珠海": "zh", "中山": "zs", "惠州": "hz", "温州": "wz",
	"绍兴": "sx", "嘉兴": "jx", "金华": "jh", "台州": "tz", "常州": "cz",
	"南通": "nt", "扬州": "yz", "徐州": "xz", "烟台": "yt", "威海": "wh",
	"潍坊": "wf", "洛阳": "ly", "桂林": "gl", "丽江": "lj", "大理": "dl",
	"西双版纳": "xsbn", "张家界": "zjj", "黄山": "hs", "九寨沟": "jzg", "秦皇岛": "qhd",
	"北戴河": "bdh", "承德": "cd", "大同": "dt", "敦煌": "dh", "景德镇": "jdz",
	// Hong Kong, Macau, Taiwan
	"台北": "tb", "香港": "hk", "澳门": "am", "高雄": "gx", "台中": "tz",
	"台南": "tn", "花莲": "hl", "垦丁": "kd",
	// Japan, cities
	"东京": "dj", "大阪": "os", "京都": "jd", "横滨": "hb", "名古屋": "mgy",
	"神户": "sb", "福冈": "fk", "札幌": "zl", "仙台": "xt", "广岛": "hd",
	"奈良": "nl", "长野": "cn", "金泽": "jz", "冲绳": "cs", "函馆": "hg",
	"那霸": "nb", "镰仓": "lc", "箱根": "xg", "日光": "rg", "轻井泽": "qjz",
	"富士河口湖": "fshkh", "热海": "rh", "别府": "bf", "由布院": "ybj", "长崎": "cq",
	"熊本": "xb", "鹿儿岛": "ler", "冈山": "gs", "高松": "gs", "松山": "ss",
	"新潟": "xx", "静冈": "jg", "滨松": "bs", "千叶": "qy", "埼玉": "qy",
	"浦安": "pa", "成田": "ct", "町田": "md", "川崎": "cq", "八王子": "bwz",
	"小樽": "xz", "旭川": "xc", "富良野": "fly", "登别": "db", "青森": "qs",
	// Tokyo wards and districts
	"新宿": "xs", "涩谷": "sg", "池袋": "cd", "秋叶原": "qyy", "浅草": "qc",
	"上野": "sy", "银座": "yz", "筑地": "zd", "品川": "pc", "日本桥": "rbq",
	"日暮里": "rml", "六本木": "lbm", "赤坂": "cb", "台场": "tc", "新桥": "xq",
	"汐留": "xl", "丸之内": "wzn", "东京站": "djz", "羽田": "yt", "原宿": "ys",
	"表参道": "bcd", "惠比寿": "hbs", "目黑": "mh", "中目黑": "zmh", "下北泽": "xbz",
	"吉祥寺": "jxs", "中野": "zy", "高田马场": "gtmc", "神田": "st", "御茶之水": "yczs",
	"水道桥": "sdq", "后乐园": "hly", "两国": "lg", "锦糸町": "jsd", "押上": "ys",
	"晴空塔": "qkt", "门前仲町": "mqzd", "丰洲": "fz", "大冢": "dz", "巢鸭": "cy",
	"五反田": "wft", "大崎": "dq", "蒲田": "pt", "舞滨": "wb", "立川": "lc",
	// Osaka and Kansai districts
	"梅田": "mt", "难波": "nb", "心斋桥": "xzq", "道顿堀": "ddk", "天王寺": "tws",
	"新大阪": "xdb", "关西机场": "gxjc", "岚山": "ls", "祇园": "qy", "河原町": "hyd",
	// Korea and Southeast Asia
	"首尔": "se", "釜山": "fs", "济州": "jz", "曼谷": "mg", "普吉": "pj",
	"清迈": "qm", "新加坡": "xjp", "吉隆坡": "jlp", "巴厘岛": "bld", "河内": "hn",
	"胡志明": "hzm", "岘港": "xg", "马尼拉": "mnl", "宿务": "sw",
}
