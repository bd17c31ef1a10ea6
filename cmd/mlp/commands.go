package main

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/born-ml/mlp/internal/nn"
	"github.com/born-ml/mlp/internal/optim"
	"github.com/born-ml/mlp/internal/parallel"
	"github.com/born-ml/mlp/internal/serialization"
	"github.com/davecgh/go-spew/spew"
)

type initCommand struct {
	app *app

	Topology string     `short:"t" long:"topology" required:"true" description:"TOML topology file"`
	Output   string     `short:"o" long:"output" required:"true" description:"Weight file to write"`
	Seed     int64      `long:"seed" default:"1" description:"Random seed for weight initialization"`
	Format   formatFlag `long:"format" default:"v1" description:"File layout {raw, v1, v2}"`
}

func (c *initCommand) Execute(_ []string) error {
	net, err := buildNetwork(c.Topology)
	if err != nil {
		return err
	}
	nn.XavierInit(net, rand.New(rand.NewSource(c.Seed)))

	if err := serialization.SaveFile(c.Output, net, c.Format.option()); err != nil {
		return err
	}
	c.app.log.Info("Created weight file",
		"path", c.Output,
		"topology", net.Topology().String(),
		"params", net.NumParams(),
		"format", c.Format.Format)
	return nil
}

type inspectCommand struct {
	app *app

	Dump   bool       `long:"dump" description:"Dump the full summary structure"`
	Format formatFlag `long:"format" default:"v1" description:"Use raw for headerless files"`
	Args   struct {
		Model string `positional-arg-name:"model" description:"Weight file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *inspectCommand) Execute(_ []string) error {
	summary, err := serialization.InspectFile(c.Args.Model, c.Format.option())
	if err != nil {
		return err
	}

	if c.Dump {
		spew.Fdump(c.app.stdout, summary)
		return nil
	}

	w := c.app.stdout
	fmt.Fprintf(w, "format:   %s\n", summary.Format)
	fmt.Fprintf(w, "layers:   %d\n", len(summary.Layers))
	fmt.Fprintf(w, "params:   %d\n", summary.Params)
	fmt.Fprintf(w, "size:     %d bytes\n", summary.Size)
	if summary.Checksum != "" {
		fmt.Fprintf(w, "checksum: %s\n", summary.Checksum)
	}
	for i, l := range summary.Layers {
		shape := fmt.Sprintf("%d neurons x %d weights", l.Neurons, l.Inputs)
		if !l.Uniform {
			shape = fmt.Sprintf("%d neurons, mixed weight counts", l.Neurons)
		}
		fmt.Fprintf(w, "layer %d:  %s\n", i, shape)
	}
	if topo, err := summary.Topology(); err == nil {
		fmt.Fprintf(w, "shape:    %s\n", shapeString(topo))
	}
	return nil
}

// shapeString prints widths only; weight files carry no activations.
func shapeString(topo nn.Topology) string {
	s := fmt.Sprint(topo.Inputs)
	for _, l := range topo.Layers {
		s += fmt.Sprintf("-%d", l.Neurons)
	}
	return s
}

type verifyCommand struct {
	app *app

	Topology string     `short:"t" long:"topology" required:"true" description:"TOML topology file"`
	Format   formatFlag `long:"format" default:"v1" description:"Use raw for headerless files"`
	Args     struct {
		Model string `positional-arg-name:"model" description:"Weight file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *verifyCommand) Execute(_ []string) error {
	net, err := buildNetwork(c.Topology)
	if err != nil {
		return err
	}
	if err := serialization.LoadFile(c.Args.Model, net, c.Format.option()); err != nil {
		return err
	}
	fmt.Fprintf(c.app.stdout, "ok: %s matches %s\n", c.Args.Model, net.Topology())
	return nil
}

type trainCommand struct {
	app *app

	Topology  string     `short:"t" long:"topology" required:"true" description:"TOML topology file"`
	Data      string     `short:"d" long:"data" required:"true" description:"CSV file of inputs followed by targets"`
	Output    string     `short:"o" long:"output" required:"true" description:"Weight file to write"`
	Model     string     `short:"m" long:"model" description:"Weight file to start from instead of random weights"`
	Epochs    int        `long:"epochs" default:"100" description:"Number of passes over the data"`
	Optimizer string     `long:"optimizer" default:"sgd" choice:"sgd" choice:"adam" description:"Update rule"`
	LR        float64    `long:"lr" default:"0.1" description:"Learning rate"`
	Momentum  float64    `long:"momentum" default:"0.9" description:"SGD momentum"`
	Seed      int64      `long:"seed" default:"1" description:"Random seed for initialization and shuffling"`
	NoShuffle bool       `long:"noshuffle" description:"Visit samples in file order"`
	Format    formatFlag `long:"format" default:"v1" description:"File layout {raw, v1, v2}"`
}

func (c *trainCommand) Execute(_ []string) error {
	if c.Epochs < 1 {
		return errors.New("--epochs must be at least 1")
	}

	net, err := buildNetwork(c.Topology)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(c.Seed))
	if c.Model != "" {
		if err := serialization.LoadFile(c.Model, net, c.Format.option()); err != nil {
			return err
		}
	} else {
		nn.XavierInit(net, rng)
	}

	xs, ys, err := loadSamples(c.Data, net.Inputs, net.Outputs())
	if err != nil {
		return err
	}

	var opt optim.Optimizer
	switch c.Optimizer {
	case "adam":
		opt, err = optim.NewAdam(net, optim.AdamConfig{LR: c.LR})
	default:
		opt, err = optim.NewSGD(net, optim.SGDConfig{LR: c.LR, Momentum: c.Momentum})
	}
	if err != nil {
		return err
	}

	logger := c.app.log.With("cmd", "train")
	logger.Info("Training",
		"topology", net.Topology().String(),
		"samples", len(xs),
		"epochs", c.Epochs,
		"optimizer", c.Optimizer)

	shuffle := rng
	if c.NoShuffle {
		shuffle = nil
	}
	every := max(c.Epochs/10, 1)
	start := time.Now()
	loss, err := optim.Fit(opt, xs, ys, c.Epochs, shuffle, func(epoch int, loss float64) {
		if epoch%every == 0 || epoch == c.Epochs {
			logger.Info("Epoch", "epoch", epoch, "loss", loss)
		} else {
			logger.Debug("Epoch", "epoch", epoch, "loss", loss)
		}
	})
	if err != nil {
		return err
	}

	if err := serialization.SaveFile(c.Output, net, c.Format.option()); err != nil {
		return err
	}
	logger.Info("Saved trained weights",
		"path", c.Output,
		"loss", loss,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

type predictCommand struct {
	app *app

	Topology string     `short:"t" long:"topology" required:"true" description:"TOML topology file"`
	Model    string     `short:"m" long:"model" required:"true" description:"Weight file"`
	Format   formatFlag `long:"format" default:"v1" description:"Use raw for headerless files"`
	Args     struct {
		Inputs []string `positional-arg-name:"x1,x2,..." description:"Input vectors" required:"1"`
	} `positional-args:"yes"`
}

func (c *predictCommand) Execute(_ []string) error {
	net, err := buildNetwork(c.Topology)
	if err != nil {
		return err
	}
	if err := serialization.LoadFile(c.Model, net, c.Format.option()); err != nil {
		return err
	}

	xs := make([][]float64, len(c.Args.Inputs))
	for i, arg := range c.Args.Inputs {
		if xs[i], err = parseVector(arg); err != nil {
			return fmt.Errorf("input %d: %w", i+1, err)
		}
	}

	outputs, err := net.PredictBatch(xs, parallel.DefaultConfig())
	if err != nil {
		return err
	}
	for _, out := range outputs {
		fmt.Fprintln(c.app.stdout, formatVector(out))
	}
	return nil
}

type exportCommand struct {
	app *app

	Topology string     `short:"t" long:"topology" required:"true" description:"TOML topology file"`
	Model    string     `short:"m" long:"model" required:"true" description:"Weight file"`
	Output   string     `short:"o" long:"output" required:"true" description:"SafeTensors file to write"`
	Format   formatFlag `long:"format" default:"v1" description:"Use raw for headerless files"`
}

func (c *exportCommand) Execute(_ []string) error {
	net, err := buildNetwork(c.Topology)
	if err != nil {
		return err
	}
	if err := serialization.LoadFile(c.Model, net, c.Format.option()); err != nil {
		return err
	}

	metadata := map[string]string{
		"format":   "bmlp",
		"topology": net.Topology().String(),
	}
	if err := serialization.ExportSafeTensorsFile(c.Output, net, metadata); err != nil {
		return err
	}
	c.app.log.Info("Exported SafeTensors", "path", c.Output, "tensors", 2*net.Len())
	return nil
}

type importCommand struct {
	app *app

	Input    string     `short:"i" long:"input" required:"true" description:"SafeTensors file to read"`
	Output   string     `short:"o" long:"output" required:"true" description:"Weight file to write"`
	Topology string     `short:"t" long:"topology" description:"TOML topology file; inferred from the tensors when omitted"`
	Format   formatFlag `long:"format" default:"v1" description:"File layout {raw, v1, v2}"`
}

func (c *importCommand) Execute(_ []string) error {
	r, err := serialization.NewSafeTensorsReader(c.Input)
	if err != nil {
		return err
	}
	defer r.Close()

	var net *nn.Network
	if c.Topology != "" {
		net, err = buildNetwork(c.Topology)
	} else {
		var topo nn.Topology
		if topo, err = r.Topology(); err == nil {
			net, err = nn.NewNetwork(topo)
		}
	}
	if err != nil {
		return err
	}
	if err := r.Import(net); err != nil {
		return err
	}

	if err := serialization.SaveFile(c.Output, net, c.Format.option()); err != nil {
		return err
	}
	c.app.log.Info("Imported SafeTensors",
		"path", c.Output,
		"topology", net.Topology().String(),
		"format", c.Format.Format)
	return nil
}

type versionCommand struct {
	app *app
}

func (c *versionCommand) Execute(_ []string) error {
	fmt.Fprintf(c.app.stdout, "mlp %s\n", version)
	return nil
}
