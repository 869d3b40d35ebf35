package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/vfg2006/campaigniq-api/internal/domain"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Campaign     Campaign     `mapstructure:",squash"`
	Synthesizer  Synthesizer  `mapstructure:",squash"`
	Engine       Engine       `mapstructure:",squash"`
	Validation   Validation   `mapstructure:",squash"`
	Narrative    Narrative    `mapstructure:",squash"`
	Storage      Storage      `mapstructure:",squash"`
	AnalysisSync AnalysisSync `mapstructure:",squash"`

	// Platforms é montado a partir das listas PLATFORM_* após o unmarshal.
	Platforms []Platform `mapstructure:"-"`
}

type App struct {
	Name     string `mapstructure:"app_name"`
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// Campaign define a campanha sintética/analisada.
type Campaign struct {
	StartDateRaw string  `mapstructure:"campaign_start_date"`
	DurationDays int     `mapstructure:"campaign_duration_days"`
	TotalBudget  float64 `mapstructure:"campaign_total_budget"`
	Seed         int64   `mapstructure:"seed"`

	StartDate time.Time `mapstructure:"-"`
}

// Platform carrega os priors e a alocação de orçamento de uma plataforma.
type Platform struct {
	ID             string
	BudgetShare    float64
	BaseCPM        float64
	BaseCTR        float64
	ConversionRate float64
	Creatives      int
}

// Synthesizer controla o modelo generativo do dataset sintético.
type Synthesizer struct {
	PlatformIDs             []string `mapstructure:"platform_ids"`
	PlatformBudgetShares    []string `mapstructure:"platform_budget_shares"`
	PlatformBaseCPMs        []string `mapstructure:"platform_base_cpms"`
	PlatformBaseCTRs        []string `mapstructure:"platform_base_ctrs"`
	PlatformConversionRates []string `mapstructure:"platform_conversion_rates"`
	CreativesPerPlatform    int      `mapstructure:"creatives_per_platform"`

	LearningPhaseDays int     `mapstructure:"learning_phase_days"`
	LearningCTRFloor  float64 `mapstructure:"learning_ctr_floor"`
	LearningCPMBoost  float64 `mapstructure:"learning_cpm_boost"`

	FatiguePeakDay   int     `mapstructure:"fatigue_peak_day"`
	FatigueDecayRate float64 `mapstructure:"fatigue_decay_rate"`
	FatigueCTRFloor  float64 `mapstructure:"fatigue_ctr_floor"`

	// DayOfWeekFactors tem 7 valores indexados por time.Weekday (0 = domingo).
	DayOfWeekFactors []string `mapstructure:"day_of_week_factors"`

	CreativeJitterPct float64 `mapstructure:"creative_jitter_pct"`
	NoisePct          float64 `mapstructure:"noise_pct"`
	SpendNoisePct     float64 `mapstructure:"spend_noise_pct"`
	MaxCTR            float64 `mapstructure:"max_ctr"`

	dowFactors [7]float64
}

// DOWFactors retorna a tabela de multiplicadores por dia da semana já parseada.
func (s Synthesizer) DOWFactors() [7]float64 {
	return s.dowFactors
}

// Engine controla os detectores e o ranqueador de insights.
type Engine struct {
	BenchmarkTargetCTR         float64 `mapstructure:"benchmark_target_ctr"`
	BenchmarkTargetCPM         float64 `mapstructure:"benchmark_target_cpm"`
	TopKInsights               int     `mapstructure:"top_k_insights"`
	FatigueMinRunLength        int     `mapstructure:"fatigue_min_run_length"`
	FatigueDeclineThresholdPct float64 `mapstructure:"fatigue_decline_threshold_pct"`
	TrendMinSampleSize         int64   `mapstructure:"trend_min_sample_size"`
	RevenuePerConversion       float64 `mapstructure:"revenue_per_conversion"`
}

// Validation controla a política de validação do dataset.
type Validation struct {
	Lenient        bool    `mapstructure:"validation_lenient"`
	ErrorTolerance float64 `mapstructure:"validation_error_tolerance"`

	// AllocationTolerance é o epsilon aceito na soma das alocações (1.0 ± ε).
	AllocationTolerance float64 `mapstructure:"allocation_tolerance"`
}

// Narrative configura o serviço externo de geração de narrativa.
type Narrative struct {
	URL         string `mapstructure:"narrative_url"`
	AccessToken string `mapstructure:"narrative_access_token"`
	Enabled     bool   `mapstructure:"narrative_enabled"`
}

// Storage define onde datasets e relatórios ficam em disco.
type Storage struct {
	DataDir     string `mapstructure:"data_dir"`
	DatasetFile string `mapstructure:"dataset_file"`
	ReportFile  string `mapstructure:"report_file"`
}

type AnalysisSync struct {
	CronSchedule string `mapstructure:"analysis_sync_cron"`
	Enabled      bool   `mapstructure:"analysis_sync_enabled"`
}

func SetDefaults() {
	viper.SetDefault("APP_NAME", "campaigniq")
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("LOG_LEVEL", "debug")

	viper.SetDefault("CAMPAIGN_START_DATE", "2025-06-02")
	viper.SetDefault("CAMPAIGN_DURATION_DAYS", 30)
	viper.SetDefault("CAMPAIGN_TOTAL_BUDGET", 15000.0)
	viper.SetDefault("SEED", 42)

	viper.SetDefault("PLATFORM_IDS", "google_display,meta,tiktok")
	viper.SetDefault("PLATFORM_BUDGET_SHARES", "0.40,0.35,0.25")
	viper.SetDefault("PLATFORM_BASE_CPMS", "6.50,9.00,7.00")
	viper.SetDefault("PLATFORM_BASE_CTRS", "0.009,0.016,0.028")
	viper.SetDefault("PLATFORM_CONVERSION_RATES", "0.030,0.045,0.035")
	viper.SetDefault("CREATIVES_PER_PLATFORM", 3)

	viper.SetDefault("LEARNING_PHASE_DAYS", 7)
	viper.SetDefault("LEARNING_CTR_FLOOR", 0.85)
	viper.SetDefault("LEARNING_CPM_BOOST", 1.30)
	viper.SetDefault("FATIGUE_PEAK_DAY", 21)
	viper.SetDefault("FATIGUE_DECAY_RATE", 0.04)
	viper.SetDefault("FATIGUE_CTR_FLOOR", 0.35)
	viper.SetDefault("DAY_OF_WEEK_FACTORS", "1.12,1.00,0.97,0.96,0.99,1.04,1.15")
	viper.SetDefault("CREATIVE_JITTER_PCT", 0.25)
	viper.SetDefault("NOISE_PCT", 0.10)
	viper.SetDefault("SPEND_NOISE_PCT", 0.05)
	viper.SetDefault("MAX_CTR", 0.95)

	viper.SetDefault("BENCHMARK_TARGET_CTR", 0.015)
	viper.SetDefault("BENCHMARK_TARGET_CPM", 8.0)
	viper.SetDefault("TOP_K_INSIGHTS", 5)
	viper.SetDefault("FATIGUE_MIN_RUN_LENGTH", 2)
	viper.SetDefault("FATIGUE_DECLINE_THRESHOLD_PCT", 0.15)
	viper.SetDefault("TREND_MIN_SAMPLE_SIZE", 1000)
	viper.SetDefault("REVENUE_PER_CONVERSION", 80.0)

	viper.SetDefault("VALIDATION_LENIENT", false)
	viper.SetDefault("VALIDATION_ERROR_TOLERANCE", 0.05)
	viper.SetDefault("ALLOCATION_TOLERANCE", 0.001)

	viper.SetDefault("NARRATIVE_URL", "http://localhost:9100/v1/narratives")
	viper.SetDefault("NARRATIVE_ACCESS_TOKEN", "")
	viper.SetDefault("NARRATIVE_ENABLED", false)

	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("DATASET_FILE", "campaign_data.csv")
	viper.SetDefault("REPORT_FILE", "analysis_report.json")

	viper.SetDefault("ANALYSIS_SYNC_CRON", "0 7 * * *") // Todos os dias às 7h da manhã
	viper.SetDefault("ANALYSIS_SYNC_ENABLED", false)
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis de ambiente (viper não conseguiu ler .env):", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.Finalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// Finalize parseia os campos compostos e valida a configuração inteira.
// Qualquer inconsistência é um ConfigurationError e interrompe a aplicação
// antes de qualquer geração de dados.
func (c *Config) Finalize() error {
	start, err := time.Parse(time.DateOnly, c.Campaign.StartDateRaw)
	if err != nil {
		return domain.NewConfigurationError("campaign_start_date", "data inválida %q: %v", c.Campaign.StartDateRaw, err)
	}
	c.Campaign.StartDate = start

	if err := c.buildPlatforms(); err != nil {
		return err
	}

	factors, err := parseFloats(c.Synthesizer.DayOfWeekFactors)
	if err != nil {
		return domain.NewConfigurationError("day_of_week_factors", "valores inválidos: %v", err)
	}
	if len(factors) != 7 {
		return domain.NewConfigurationError("day_of_week_factors", "esperados 7 valores, recebidos %d", len(factors))
	}
	copy(c.Synthesizer.dowFactors[:], factors)

	return c.Validate()
}

func (c *Config) buildPlatforms() error {
	s := c.Synthesizer
	n := len(s.PlatformIDs)
	if n == 0 {
		return domain.NewConfigurationError("platform_ids", "nenhuma plataforma configurada")
	}
	if len(s.PlatformBudgetShares) != n || len(s.PlatformBaseCPMs) != n ||
		len(s.PlatformBaseCTRs) != n || len(s.PlatformConversionRates) != n {
		return domain.NewConfigurationError("platform_*", "listas de plataforma com tamanhos diferentes")
	}

	shares, err := parseFloats(s.PlatformBudgetShares)
	if err != nil {
		return domain.NewConfigurationError("platform_budget_shares", "valores inválidos: %v", err)
	}
	cpms, err := parseFloats(s.PlatformBaseCPMs)
	if err != nil {
		return domain.NewConfigurationError("platform_base_cpms", "valores inválidos: %v", err)
	}
	ctrs, err := parseFloats(s.PlatformBaseCTRs)
	if err != nil {
		return domain.NewConfigurationError("platform_base_ctrs", "valores inválidos: %v", err)
	}
	convs, err := parseFloats(s.PlatformConversionRates)
	if err != nil {
		return domain.NewConfigurationError("platform_conversion_rates", "valores inválidos: %v", err)
	}

	c.Platforms = make([]Platform, 0, n)
	for i, id := range s.PlatformIDs {
		c.Platforms = append(c.Platforms, Platform{
			ID:             id,
			BudgetShare:    shares[i],
			BaseCPM:        cpms[i],
			BaseCTR:        ctrs[i],
			ConversionRate: convs[i],
			Creatives:      s.CreativesPerPlatform,
		})
	}

	return nil
}

// Validate aplica as regras de configuração do engine. É chamado no
// carregamento, mas também pode ser usado por chamadores que montam a
// configuração programaticamente.
func (c *Config) Validate() error {
	if c.Campaign.DurationDays <= 0 {
		return domain.NewConfigurationError("campaign_duration_days", "deve ser positivo, recebido %d", c.Campaign.DurationDays)
	}
	if c.Campaign.TotalBudget <= 0 {
		return domain.NewConfigurationError("campaign_total_budget", "deve ser positivo, recebido %.2f", c.Campaign.TotalBudget)
	}
	if c.Synthesizer.CreativesPerPlatform <= 0 {
		return domain.NewConfigurationError("creatives_per_platform", "deve ser positivo, recebido %d", c.Synthesizer.CreativesPerPlatform)
	}

	// Frações de ruído ≥ 1.0 permitiriam multiplicadores negativos e, com
	// eles, CPM e impressões negativos no sintetizador.
	if v := c.Synthesizer.CreativeJitterPct; v < 0 || v >= 1 {
		return domain.NewConfigurationError("creative_jitter_pct", "deve estar em [0,1), recebido %.4f", v)
	}
	if v := c.Synthesizer.NoisePct; v < 0 || v >= 1 {
		return domain.NewConfigurationError("noise_pct", "deve estar em [0,1), recebido %.4f", v)
	}
	if v := c.Synthesizer.SpendNoisePct; v < 0 || v >= 1 {
		return domain.NewConfigurationError("spend_noise_pct", "deve estar em [0,1), recebido %.4f", v)
	}

	var sum float64
	for _, p := range c.Platforms {
		if p.BudgetShare < 0 {
			return domain.NewConfigurationError("platform_budget_shares", "alocação negativa para %s", p.ID)
		}
		if p.BaseCPM <= 0 || p.BaseCTR <= 0 {
			return domain.NewConfigurationError("platform_priors", "priors de %s devem ser positivos", p.ID)
		}
		sum += p.BudgetShare
	}
	if diff := sum - 1.0; diff > c.Validation.AllocationTolerance || diff < -c.Validation.AllocationTolerance {
		return domain.NewConfigurationError("platform_budget_shares", "alocações somam %.4f, esperado 1.0 ± %.4f", sum, c.Validation.AllocationTolerance)
	}

	if c.Engine.TopKInsights <= 0 {
		return domain.NewConfigurationError("top_k_insights", "deve ser positivo, recebido %d", c.Engine.TopKInsights)
	}
	if c.Engine.FatigueMinRunLength < 2 {
		return domain.NewConfigurationError("fatigue_min_run_length", "deve ser >= 2, recebido %d", c.Engine.FatigueMinRunLength)
	}
	if t := c.Engine.FatigueDeclineThresholdPct; t <= 0 || t >= 1 {
		return domain.NewConfigurationError("fatigue_decline_threshold_pct", "deve estar em (0,1), recebido %.4f", t)
	}
	if c.Engine.TrendMinSampleSize <= 0 {
		return domain.NewConfigurationError("trend_min_sample_size", "deve ser positivo, recebido %d", c.Engine.TrendMinSampleSize)
	}

	return nil
}

// CampaignWindow retorna o intervalo [início, fim] esperado para as datas dos
// registros da campanha.
func (c *Config) CampaignWindow() (time.Time, time.Time) {
	start := c.Campaign.StartDate
	return start, start.AddDate(0, 0, c.Campaign.DurationDays-1)
}

func parseFloats(values []string) ([]float64, error) {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Debug("Arquivo .env carregado de:", location)
			return
		}
	}
}
