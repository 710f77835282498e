package experiment_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/config"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/ebm"
	"github.com/BenniSchmiedel/Low-dimensional-EBMs/internal/experiment"
)

func parseConfig(raw string) *config.Config {
	cfg := config.DefaultConfig()
	ExpectWithOffset(1, yaml.Unmarshal([]byte(raw), cfg)).To(Succeed())
	ExpectWithOffset(1, cfg.Validate()).To(Succeed())
	return cfg
}

var _ = Describe("Experiment", func() {
	Describe("zero-dimensional radiative balance", func() {
		const raw = `
name: 0d-balance
equation:
  heat_capacity: 2.0e8
integration:
  steps: 10
  step_size: 86400
initial:
  temperature: 288
  global_mean: 288
terms:
  - name: insolation
    params:
      q: 342
      albedo: static
      albedo_params: [0.3]
  - name: planck
    params:
      activated: true
      emissivity: 0.6
`

		It("cools monotonically toward the radiative equilibrium", func() {
			exp, err := experiment.New(parseConfig(raw))
			Expect(err).NotTo(HaveOccurred())

			res, err := exp.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.GlobalMean).To(HaveLen(11))

			// T_eq = (0.7*342/(0.6*sigma))^0.25 is near 255K, well below
			// the 288K start, so every step cools.
			for i := 1; i < len(res.GlobalMean); i++ {
				Expect(res.GlobalMean[i]).To(BeNumerically("<", res.GlobalMean[i-1]),
					"step %d did not cool", i)
			}
			Expect(res.GlobalMean[len(res.GlobalMean)-1]).To(BeNumerically(">", 255))
			Expect(res.Converged).To(BeFalse())
		})
	})

	Describe("one-dimensional Budyko model", func() {
		const raw = `
name: budyko-gradient
equation:
  heat_capacity: 2.0e8
integration:
  steps: 36500
  step_size: 86400
  record_every: 10
  convergence:
    enabled: true
    window: 100
    amplitude: 0.01
grid:
  resolution: 10
  both_hemispheres: true
  anchor: belt
initial:
  temperature: 288
  global_mean: 288
  cosine_shift: true
  cosine_amplitude: 30
terms:
  - name: insolation
    params:
      q: 342
      solar_input: true
      albedo: static
      albedo_params: [0.3]
  - name: budyko_noclouds
    params:
      activated: true
      a: 222.74
      b: 2.23
  - name: transfer_budyko
    params:
      activated: true
      beta: 3.74
      read: true
`

		It("converges to a poleward-decreasing temperature profile", func() {
			exp, err := experiment.New(parseConfig(raw))
			Expect(err).NotTo(HaveOccurred())

			res, err := exp.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged).To(BeTrue())
			Expect(res.Steps).To(BeNumerically("<", 36500))

			final := res.Temp[len(res.Temp)-1]
			Expect(final).To(HaveLen(18))

			// Bands run south pole to north pole; each hemisphere must
			// cool monotonically toward its pole.
			for i := 0; i < 8; i++ {
				Expect(final[i]).To(BeNumerically("<", final[i+1]),
					"southern band %d out of order", i)
			}
			for i := 9; i < 17; i++ {
				Expect(final[i]).To(BeNumerically(">", final[i+1]),
					"northern band %d out of order", i)
			}

			// The trailing recorded window satisfies the amplitude bound.
			n := len(res.GlobalMean)
			window := res.GlobalMean[n-100:]
			mean := 0.0
			for _, v := range window {
				mean += v
			}
			mean /= float64(len(window))
			variance := 0.0
			for _, v := range window {
				variance += (v - mean) * (v - mean)
			}
			std := math.Sqrt(variance / float64(len(window)-1))
			Expect(std).To(BeNumerically("<=", 0.01))

			// The transfer term recorded its flux series alongside.
			Expect(res.Series).To(HaveKey("transfer_budyko"))
		})
	})

	Describe("ensemble runs", func() {
		const raw = `
name: tiny-ensemble
equation:
  heat_capacity: 2.0e8
integration:
  steps: 20
  step_size: 86400
grid:
  resolution: 30
  both_hemispheres: true
  anchor: belt
initial:
  temperature: 288
  global_mean: 288
  noise_shift: true
  noise_amplitude: 2
  noise_seed: 7
ensemble: 4
terms:
  - name: insolation
    params:
      q: 342
      albedo: static
      albedo_params: [0.3]
  - name: planck
    params:
      activated: true
      emissivity: 0.6
`

		It("runs isolated members with distinct noise realizations", func() {
			exp, err := experiment.New(parseConfig(raw))
			Expect(err).NotTo(HaveOccurred())

			results, err := exp.RunEnsemble(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(4))

			for _, res := range results {
				Expect(res.GlobalMean).To(HaveLen(21))
			}
			// Different noise seeds per member must give different
			// initial fields and trajectories.
			Expect(results[0].Temp[0]).NotTo(Equal(results[1].Temp[0]))
			Expect(results[0].GlobalMean[20]).NotTo(Equal(results[1].GlobalMean[20]))
		})
	})

	Describe("term resolution", func() {
		It("rejects unknown term names", func() {
			reg := experiment.NewRegistry()
			_, err := reg.Term("no_such_term", nil)
			var ce ebm.ConfigError
			Expect(err).To(BeAssignableToTypeOf(ce))
		})

		It("rejects malformed albedo parameter counts", func() {
			cfg := parseConfig(`
name: bad-albedo
equation:
  heat_capacity: 2.0e8
integration:
  steps: 1
  step_size: 86400
initial:
  temperature: 288
terms:
  - name: insolation
    params:
      q: 342
      albedo: smooth
      albedo_params: [1, 2]
`)
			exp, err := experiment.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			_, err = exp.Run(context.Background())
			Expect(err).To(HaveOccurred())
		})
	})
})
