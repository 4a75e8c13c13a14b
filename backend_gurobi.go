//go:build gurobi

package mipbench

import _ "git.solver4all.com/azaryc2s/mipbench/mip/gurobi"
